// pkg/core/snapshot.go
package core

import "time"

// Fix is an interpolated position on an entity's trajectory. Heading is
// always derived from geometry, never from the raw reported heading.
type Fix struct {
	Lon     float64
	Lat     float64
	Heading float64
	Attrs   PointAttributes
}

// Marker is the renderable state of one entity at one instant.
type Marker struct {
	ID          string  `json:"id"`
	Lon         float64 `json:"lon"`
	Lat         float64 `json:"lat"`
	Heading     float64 `json:"heading"`
	Color       string  `json:"color"`
	SizePx      int     `json:"sizePx"`
	Opacity     float64 `json:"opacity"`
	Category    string  `json:"category,omitempty"`
	Destination string  `json:"destination,omitempty"`
}

// Snapshot is the consolidated renderable state of one tick. It is
// rebuilt from scratch every tick and never persisted by the core; an
// empty Markers map means the renderer should clear all markers.
type Snapshot struct {
	Time    time.Time         `json:"time"`
	Markers map[string]Marker `json:"markers"`
}

// Empty reports whether the snapshot carries no markers.
func (s Snapshot) Empty() bool {
	return len(s.Markers) == 0
}

// Bounds is the geographic envelope of a set of trajectory points.
type Bounds struct {
	MinLon    float64 `json:"minLon"`
	MaxLon    float64 `json:"maxLon"`
	MinLat    float64 `json:"minLat"`
	MaxLat    float64 `json:"maxLat"`
	CenterLon float64 `json:"centerLon"`
	CenterLat float64 `json:"centerLat"`
	LonSpan   float64 `json:"lonSpan"`
	LatSpan   float64 `json:"latSpan"`
}
