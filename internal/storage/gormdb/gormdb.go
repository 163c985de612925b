// Package gormdb archives session output to the relational database
// managed by internal/database.
package gormdb

import (
	"fmt"
	"sync"
	"time"

	"github.com/vesselwatch/replay/internal/database"
	"github.com/vesselwatch/replay/internal/geo"
	"github.com/vesselwatch/replay/internal/model"
	"github.com/vesselwatch/replay/pkg/core"
)

// Backend writes sessions, vessels and per-tick states through gorm.
type Backend struct {
	manager *database.Manager

	mu        sync.Mutex
	sessionID uint
	active    bool
	seen      map[string]bool
}

// New creates a backend around an already constructed database manager.
func New(manager *database.Manager) *Backend {
	return &Backend{
		manager: manager,
		seen:    make(map[string]bool),
	}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	if err := b.manager.Connect(); err != nil {
		return err
	}
	return b.manager.Setup()
}

// Close closes the underlying connection.
func (b *Backend) Close() error {
	return b.manager.Close()
}

// StartSession inserts the session row and remembers its key.
func (b *Backend) StartSession(info *core.SessionInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	session := model.Session{
		Name:        info.Name,
		DatasetPath: info.DatasetPath,
		StartTime:   info.StartedAt,
		WindowStart: info.Window.Start,
		WindowEnd:   info.Window.End,
		BaseRatio:   info.BaseRatio,
		Speed:       info.Speed,
	}
	if err := b.manager.DB.Create(&session).Error; err != nil {
		return fmt.Errorf("creating session row: %w", err)
	}
	b.sessionID = session.ID
	b.active = true
	b.seen = make(map[string]bool)
	return nil
}

// RecordSnapshot inserts one state row per marker. Vessels are
// registered lazily the first time they appear in a snapshot.
func (b *Backend) RecordSnapshot(snap *core.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return fmt.Errorf("no session in progress")
	}

	states := make([]model.VesselState, 0, len(snap.Markers))
	for id, m := range snap.Markers {
		if !b.seen[id] {
			vessel := model.Vessel{
				SessionID: b.sessionID,
				VesselID:  id,
				Category:  m.Category,
				SizeClass: sizeClassName(m.SizePx),
				Color:     m.Color,
				FirstSeen: snap.Time,
				LastSeen:  snap.Time,
			}
			if err := b.manager.DB.Create(&vessel).Error; err != nil {
				return fmt.Errorf("creating vessel row: %w", err)
			}
			b.seen[id] = true
		}
		states = append(states, model.VesselState{
			Time:        snap.Time,
			SessionID:   b.sessionID,
			VesselID:    id,
			Position:    geo.PointFromLonLat(m.Lon, m.Lat),
			Heading:     float32(m.Heading),
			Opacity:     float32(m.Opacity),
			Destination: m.Destination,
		})
	}
	if len(states) == 0 {
		return nil
	}
	if err := b.manager.DB.Create(&states).Error; err != nil {
		return fmt.Errorf("creating vessel state rows: %w", err)
	}

	err := b.manager.DB.Model(&model.Vessel{}).
		Where("session_id = ? AND last_seen < ?", b.sessionID, snap.Time).
		Update("last_seen", snap.Time).Error
	if err != nil {
		return fmt.Errorf("updating vessel last seen: %w", err)
	}
	return nil
}

// RecordPerformance stores the cost of one tick against the session.
func (b *Backend) RecordPerformance(at time.Time, activeMarkers int, tickDuration time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return fmt.Errorf("no session in progress")
	}
	perf := model.SessionPerformance{
		Time:               at,
		SessionID:          b.sessionID,
		ActiveMarkers:      uint16(activeMarkers),
		LastTickDurationMs: float32(tickDuration.Seconds() * 1000),
	}
	if err := b.manager.DB.Create(&perf).Error; err != nil {
		return fmt.Errorf("creating performance row: %w", err)
	}
	return nil
}

// EndSession flushes the in-memory fallback database to disk when one
// is in use.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return fmt.Errorf("no session in progress")
	}
	b.active = false

	if b.manager.ShouldSaveLocal && b.manager.SqliteFilePath != "" {
		return b.manager.DumpMemoryToDisk()
	}
	return nil
}

func sizeClassName(px int) string {
	switch {
	case px >= core.SizeLarge.Pixels():
		return core.SizeLarge.String()
	case px >= core.SizeMedium.Pixels():
		return core.SizeMedium.String()
	default:
		return core.SizeSmall.String()
	}
}
