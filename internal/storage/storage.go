// internal/storage/storage.go
package storage

import (
	"time"

	"github.com/vesselwatch/replay/pkg/core"
)

// Backend is the interface all snapshot sinks must satisfy. Sinks
// observe playback output; they never influence the timeline.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(info *core.SessionInfo) error
	EndSession() error

	// State recording
	RecordSnapshot(snap *core.Snapshot) error
}

// Exportable is an optional interface for backends that produce a file
// artifact when the session ends.
type Exportable interface {
	ExportedFilePath() string
}

// PerformanceRecorder is an optional interface for backends that keep
// per-tick cost figures alongside the replayed state.
type PerformanceRecorder interface {
	RecordPerformance(at time.Time, activeMarkers int, tickDuration time.Duration) error
}
