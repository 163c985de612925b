// pkg/core/timerange.go
package core

import "time"

// TimeRange is a closed interval [Start, End] on the virtual timeline.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether both endpoints are set and ordered.
func (r TimeRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.Start.After(r.End)
}

// Normalized returns the range with reversed endpoints swapped.
func (r TimeRange) Normalized() TimeRange {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return TimeRange{Start: r.End, End: r.Start}
	}
	return r
}

// Contains reports whether t falls inside the closed interval.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Clamp pins t into the interval.
func (r TimeRange) Clamp(t time.Time) time.Time {
	if t.Before(r.Start) {
		return r.Start
	}
	if t.After(r.End) {
		return r.End
	}
	return t
}

// Duration is the span of the interval.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Mode selects how the playback presents entities.
type Mode uint8

const (
	// ModeMulti renders every active entity at full opacity.
	ModeMulti Mode = iota
	// ModeSingle dims every entity except the focused one.
	ModeSingle
)

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "multi"
}

// ClockState is the externally visible virtual clock state.
type ClockState struct {
	CurrentTime time.Time
	Playing     bool
	Speed       float64
	Mode        Mode
	FocusID     string
}
