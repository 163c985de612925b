// Package trajectory owns each entity's sorted position samples and
// answers temporal position queries by binary-search interpolation.
package trajectory

import (
	"math/rand"
	"sort"
	"time"

	"github.com/vesselwatch/replay/internal/geo"
	"github.com/vesselwatch/replay/pkg/core"
)

// LoadStats summarizes one bulk load. Nothing in a load is fatal;
// degraded input only shows up in these counters.
type LoadStats struct {
	Entities         int
	ExcludedEntities int
	MalformedPoints  int
}

type entityState struct {
	id       string
	points   []core.TrajectoryPoint
	timed    int // points[:timed] are timestamped, ascending
	category string
	size     core.SizeClass
}

// Store holds the loaded trajectories. A new Load fully replaces the
// previous contents rather than merging.
type Store struct {
	entities map[string]*entityState
	colors   map[string]string

	palette  []string
	fallback string
	home     string
	rng      *rand.Rand
}

// Option configures a Store.
type Option func(*Store)

// WithPalette overrides the category color palette.
func WithPalette(palette []string) Option {
	return func(s *Store) { s.palette = palette }
}

// WithHomeCategory pins a category to the reserved first palette slot.
func WithHomeCategory(category string) Option {
	return func(s *Store) { s.home = category }
}

// WithFallbackColor overrides the color for absent categories.
func WithFallbackColor(color string) Option {
	return func(s *Store) { s.fallback = color }
}

// WithRand injects the source used to shuffle color assignment, so
// tests can make it deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) { s.rng = rng }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		entities: make(map[string]*entityState),
		colors:   make(map[string]string),
		palette:  DefaultPalette,
		fallback: FallbackColor,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store contents with the given entities. Points
// with a non-finite coordinate are dropped and counted as malformed.
// Remaining points are sorted ascending by timestamp with
// untimestamped points after all timestamped ones, kept as attribute
// carriers. An entity left with zero points is dropped and counted.
func (s *Store) Load(entities []core.Entity) LoadStats {
	s.entities = make(map[string]*entityState, len(entities))
	s.colors = make(map[string]string)

	var stats LoadStats
	categories := make(map[string]struct{})

	for _, e := range entities {
		points := make([]core.TrajectoryPoint, 0, len(e.Points))
		for _, p := range e.Points {
			if !geo.FiniteCoord(p.Lon, p.Lat) {
				stats.MalformedPoints++
				continue
			}
			points = append(points, p)
		}
		if len(points) == 0 {
			stats.ExcludedEntities++
			continue
		}

		sort.SliceStable(points, func(i, j int) bool {
			a, b := points[i], points[j]
			switch {
			case a.Timestamped() && b.Timestamped():
				return a.Time.Before(*b.Time)
			case a.Timestamped():
				return true
			default:
				return false
			}
		})
		timed := 0
		for timed < len(points) && points[timed].Timestamped() {
			timed++
		}

		st := &entityState{
			id:       e.ID,
			points:   points,
			timed:    timed,
			category: normalizeCategory(points[0].Attrs.Origin),
			size:     sizeOf(points),
		}
		s.entities[e.ID] = st
		if st.category != "" {
			categories[st.category] = struct{}{}
		}
		stats.Entities++
	}

	s.colors = assignColors(categories, s.home, s.palette, s.rng)
	return stats
}

// sizeOf classifies from the first point carrying a ship type code.
func sizeOf(points []core.TrajectoryPoint) core.SizeClass {
	for _, p := range points {
		if p.Attrs.ShipType != nil {
			return core.SizeClassOf(p.Attrs.ShipType)
		}
	}
	return core.SizeSmall
}

// PositionAt answers the entity's position and geometric heading at
// virtual time t. Raw stored heading fields never influence the
// result. ok is false for unknown entities.
func (s *Store) PositionAt(id string, t time.Time) (core.Fix, bool) {
	st, ok := s.entities[id]
	if !ok || len(st.points) == 0 {
		return core.Fix{}, false
	}

	// A single point, or no timestamped point at all, pins the entity
	// in place with heading 0.
	if st.timed <= 1 {
		p := st.points[0]
		return core.Fix{Lon: p.Lon, Lat: p.Lat, Heading: 0, Attrs: p.Attrs}, true
	}

	pts := st.points[:st.timed]
	first, last := pts[0], pts[len(pts)-1]

	if !t.After(*first.Time) {
		h := geo.InitialBearing(first.Lat, first.Lon, pts[1].Lat, pts[1].Lon)
		return core.Fix{Lon: first.Lon, Lat: first.Lat, Heading: h, Attrs: first.Attrs}, true
	}
	if !t.Before(*last.Time) {
		prev := pts[len(pts)-2]
		h := geo.InitialBearing(prev.Lat, prev.Lon, last.Lat, last.Lon)
		return core.Fix{Lon: last.Lon, Lat: last.Lat, Heading: h, Attrs: last.Attrs}, true
	}

	// First index whose timestamp is >= t; the bracketing pair is
	// (idx-1, idx). t strictly inside the range guarantees 0 < idx.
	idx := sort.Search(len(pts), func(i int) bool {
		return !pts[i].Time.Before(t)
	})
	p1, p2 := pts[idx-1], pts[idx]
	heading := geo.InitialBearing(p1.Lat, p1.Lon, p2.Lat, p2.Lon)

	if p2.Time.Equal(t) {
		return core.Fix{Lon: p2.Lon, Lat: p2.Lat, Heading: heading, Attrs: mergeAttrs(p2.Attrs, p1.Attrs)}, true
	}

	span := p2.Time.Sub(*p1.Time)
	progress := 1.0
	if span > 0 {
		progress = float64(t.Sub(*p1.Time)) / float64(span)
	}
	if progress < 0 {
		progress = 0
	} else if progress > 1 {
		progress = 1
	}

	return core.Fix{
		Lon:     p1.Lon + (p2.Lon-p1.Lon)*progress,
		Lat:     p1.Lat + (p2.Lat-p1.Lat)*progress,
		Heading: heading,
		Attrs:   mergeAttrs(p1.Attrs, p2.Attrs),
	}, true
}

// mergeAttrs carries primary's attributes, filling absent fields from
// secondary.
func mergeAttrs(primary, secondary core.PointAttributes) core.PointAttributes {
	out := primary
	if out.Origin == "" {
		out.Origin = secondary.Origin
	}
	if out.ShipType == nil {
		out.ShipType = secondary.ShipType
	}
	if out.SpeedKnots == nil {
		out.SpeedKnots = secondary.SpeedKnots
	}
	if out.TurnRate == nil {
		out.TurnRate = secondary.TurnRate
	}
	if out.Draught == nil {
		out.Draught = secondary.Draught
	}
	if out.Heading == nil {
		out.Heading = secondary.Heading
	}
	if out.Course == nil {
		out.Course = secondary.Course
	}
	if out.NavStatus == "" {
		out.NavStatus = secondary.NavStatus
	}
	if out.Destination == "" {
		out.Destination = secondary.Destination
	}
	if out.ETA == nil {
		out.ETA = secondary.ETA
	}
	if out.LegStart == nil {
		out.LegStart = secondary.LegStart
	}
	if out.Arrival == nil {
		out.Arrival = secondary.Arrival
	}
	return out
}

// Marker renders the entity's state at t as a full-opacity marker.
func (s *Store) Marker(id string, t time.Time) (core.Marker, bool) {
	fix, ok := s.PositionAt(id, t)
	if !ok {
		return core.Marker{}, false
	}
	st := s.entities[id]
	return core.Marker{
		ID:          id,
		Lon:         fix.Lon,
		Lat:         fix.Lat,
		Heading:     fix.Heading,
		Color:       s.colorOf(st.category),
		SizePx:      st.size.Pixels(),
		Opacity:     1,
		Category:    st.category,
		Destination: fix.Attrs.Destination,
	}, true
}

func (s *Store) colorOf(category string) string {
	if c, ok := s.colors[category]; ok {
		return c
	}
	return s.fallback
}

// Category returns the entity's normalized category, empty when absent.
func (s *Store) Category(id string) string {
	if st, ok := s.entities[id]; ok {
		return st.category
	}
	return ""
}

// Color returns the entity's assigned palette color.
func (s *Store) Color(id string) string {
	if st, ok := s.entities[id]; ok {
		return s.colorOf(st.category)
	}
	return s.fallback
}

// SizePx returns the entity's marker size in pixels.
func (s *Store) SizePx(id string) int {
	if st, ok := s.entities[id]; ok {
		return st.size.Pixels()
	}
	return core.SizeSmall.Pixels()
}

// IDs lists all loaded entity IDs, sorted.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of loaded entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// BoundsOf computes the geographic envelope over every point of the
// selected entities. ok is false when no finite coordinate exists.
func (s *Store) BoundsOf(ids []string) (core.Bounds, bool) {
	bt := geo.NewBoundsTracker()
	for _, id := range ids {
		st, ok := s.entities[id]
		if !ok {
			continue
		}
		for _, p := range st.points {
			bt.Add(p.Lon, p.Lat)
		}
	}
	return bt.Bounds()
}

// Bounds computes the envelope over all loaded entities.
func (s *Store) Bounds() (core.Bounds, bool) {
	return s.BoundsOf(s.IDs())
}
