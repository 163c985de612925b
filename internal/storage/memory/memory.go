// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/vesselwatch/replay/internal/config"
	"github.com/vesselwatch/replay/pkg/core"
)

// Backend stores session snapshots in memory and exports to JSON when
// the session ends.
type Backend struct {
	cfg     config.MemoryConfig
	session *core.SessionInfo
	frames  []core.Snapshot

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session, discarding any frames
// from a previous one.
func (b *Backend) StartSession(info *core.SessionInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = info
	b.frames = b.frames[:0]
	return nil
}

// RecordSnapshot appends one tick's output.
func (b *Backend) RecordSnapshot(snap *core.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no session in progress")
	}
	b.frames = append(b.frames, *snap)
	return nil
}

// EndSession writes the recorded frames to disk.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return fmt.Errorf("no session in progress")
	}
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.session = nil
	return nil
}

// ExportedFilePath returns the path of the last written export.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// FrameCount reports the number of recorded frames.
func (b *Backend) FrameCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.frames)
}
