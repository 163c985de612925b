// pkg/core/entity.go
package core

import "time"

// Entity is a tracked moving object (a vessel) with a unique id and its
// own trajectory. Points arrive in arbitrary order; the trajectory store
// sorts them on load.
type Entity struct {
	ID     string
	Points []TrajectoryPoint
}

// TrajectoryPoint is one reported position sample. Time is nil for
// records whose timestamp was missing or unparseable; such points are
// retained as attribute carriers only and never participate in temporal
// indexing or interpolation.
type TrajectoryPoint struct {
	Lon   float64
	Lat   float64
	Time  *time.Time
	Attrs PointAttributes
}

// PointAttributes holds the optional per-sample fields carried alongside
// a position. Heading and Course are the raw reported values; rendering
// always recomputes direction from geometry and never trusts them.
type PointAttributes struct {
	Origin      string
	ShipType    *float64
	SpeedKnots  *float64
	TurnRate    *float64
	Draught     *float64
	Heading     *float64
	Course      *float64
	NavStatus   string
	Destination string
	ETA         *time.Time
	LegStart    *time.Time
	Arrival     *time.Time
}

// Timestamped reports whether the point carries a usable timestamp.
func (p TrajectoryPoint) Timestamped() bool {
	return p.Time != nil
}

// SizeClass buckets vessels by their numeric ship type code.
type SizeClass uint8

const (
	SizeSmall SizeClass = iota
	SizeMedium
	SizeLarge
)

// SizeClassOf derives the size class from a ship type code.
// Codes >= 70000 are large, >= 50000 medium, everything else small.
func SizeClassOf(shipType *float64) SizeClass {
	if shipType == nil {
		return SizeSmall
	}
	switch {
	case *shipType >= 70000:
		return SizeLarge
	case *shipType >= 50000:
		return SizeMedium
	default:
		return SizeSmall
	}
}

func (s SizeClass) String() string {
	switch s {
	case SizeLarge:
		return "large"
	case SizeMedium:
		return "medium"
	default:
		return "small"
	}
}

// Pixels returns the marker diameter for the size class.
func (s SizeClass) Pixels() int {
	switch s {
	case SizeLarge:
		return 16
	case SizeMedium:
		return 12
	default:
		return 8
	}
}
