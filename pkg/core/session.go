// pkg/core/session.go
package core

import "time"

// SessionInfo is the metadata describing one playback session, handed to
// storage sinks when playback starts.
type SessionInfo struct {
	Name        string
	DatasetPath string
	StartedAt   time.Time
	Window      TimeRange
	Speed       float64
	BaseRatio   float64
}
