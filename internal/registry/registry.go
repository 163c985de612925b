// Package registry tracks per-entity activity windows and the shared
// virtual clock they synchronize against.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/vesselwatch/replay/pkg/core"
)

// DefaultSpeed is the playback speed multiplier applied after
// Initialize and Reset.
const DefaultSpeed = 1.0

// Registry maps entity IDs to the time windows during which they hold
// at least one timestamped sample, and owns the virtual clock state
// shared by every consumer of the timeline.
//
// All methods are safe for concurrent use, though the playback engine
// serializes its own access.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]core.TimeRange
	global  core.TimeRange
	hasAny  bool

	current time.Time
	playing bool
	speed   float64
	mode    core.Mode
	focusID string
}

func New() *Registry {
	return &Registry{
		windows: make(map[string]core.TimeRange),
		speed:   DefaultSpeed,
	}
}

// Initialize derives one activity window per entity from its
// timestamped points and recomputes the global range. Entities with no
// timestamped point carry no window and are counted in the return
// value. When explicit is non-nil it overrides the derived global
// range; a reversed explicit range is swapped rather than rejected.
//
// The virtual clock is rewound to the global start, stopped, and reset
// to the default speed and multi mode.
func (r *Registry) Initialize(entities []core.Entity, explicit *core.TimeRange) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.windows = make(map[string]core.TimeRange, len(entities))
	r.hasAny = false
	r.global = core.TimeRange{}

	excluded := 0
	for _, e := range entities {
		w, ok := windowOf(e)
		if !ok {
			excluded++
			continue
		}
		r.windows[e.ID] = w
		if !r.hasAny {
			r.global = w
			r.hasAny = true
			continue
		}
		if w.Start.Before(r.global.Start) {
			r.global.Start = w.Start
		}
		if w.End.After(r.global.End) {
			r.global.End = w.End
		}
	}

	if explicit != nil {
		norm := explicit.Normalized()
		if norm.Valid() {
			r.global = norm
			r.hasAny = true
		}
	}

	r.current = r.global.Start
	r.playing = false
	r.speed = DefaultSpeed
	r.mode = core.ModeMulti
	r.focusID = ""
	return excluded
}

// windowOf spans the earliest to the latest timestamped point. Points
// need not be sorted yet at this stage.
func windowOf(e core.Entity) (core.TimeRange, bool) {
	var w core.TimeRange
	found := false
	for _, p := range e.Points {
		if !p.Timestamped() {
			continue
		}
		t := *p.Time
		if !found {
			w = core.TimeRange{Start: t, End: t}
			found = true
			continue
		}
		if t.Before(w.Start) {
			w.Start = t
		}
		if t.After(w.End) {
			w.End = t
		}
	}
	return w, found
}

// Window returns the activity window of one entity.
func (r *Registry) Window(id string) (core.TimeRange, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[id]
	return w, ok
}

// GlobalRange returns the union of all windows, or the explicit range
// given at Initialize. ok is false before any window exists.
func (r *Registry) GlobalRange() (core.TimeRange, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global, r.hasAny
}

// IsActiveAt reports whether the entity's window contains t. Both
// endpoints are inclusive.
func (r *Registry) IsActiveAt(id string, t time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.windows[id]
	return ok && w.Contains(t)
}

// ActiveAt lists the IDs of every entity active at t, sorted for
// deterministic iteration.
func (r *Registry) ActiveAt(t time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.windows))
	for id, w := range r.windows {
		if w.Contains(t) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SetCurrentTime moves the virtual clock, clamping t into the global
// range, and returns the time actually applied.
func (r *Registry) SetCurrentTime(t time.Time) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasAny {
		t = r.global.Clamp(t)
	}
	r.current = t
	return t
}

func (r *Registry) CurrentTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Registry) SetPlaying(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = playing
}

func (r *Registry) Playing() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playing
}

// SetSpeed applies a new speed multiplier. Non-positive values are
// ignored so playback can never run backwards or stall on bad input.
func (r *Registry) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = speed
}

func (r *Registry) Speed() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.speed
}

// SetMode switches presentation mode. Entering single mode requires a
// focus ID with a known window; otherwise the call is ignored. Leaving
// single mode clears the focus.
func (r *Registry) SetMode(mode core.Mode, focusID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode == core.ModeSingle {
		if _, ok := r.windows[focusID]; !ok {
			return
		}
		r.mode = core.ModeSingle
		r.focusID = focusID
		return
	}
	r.mode = core.ModeMulti
	r.focusID = ""
}

func (r *Registry) Mode() core.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Registry) FocusID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focusID
}

// State snapshots the whole clock state in one lock acquisition.
func (r *Registry) State() core.ClockState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return core.ClockState{
		CurrentTime: r.current,
		Playing:     r.playing,
		Speed:       r.speed,
		Mode:        r.mode,
		FocusID:     r.focusID,
	}
}

// Reset rewinds the clock to the global start and restores defaults,
// keeping the windows themselves.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = r.global.Start
	r.playing = false
	r.speed = DefaultSpeed
	r.mode = core.ModeMulti
	r.focusID = ""
}
