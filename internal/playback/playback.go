// Package playback advances the virtual clock against wall time and
// assembles per-tick snapshots from the registry and the trajectory
// store.
package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/vesselwatch/replay/internal/clock"
	"github.com/vesselwatch/replay/internal/geo"
	"github.com/vesselwatch/replay/internal/registry"
	"github.com/vesselwatch/replay/internal/storage"
	"github.com/vesselwatch/replay/internal/trajectory"
	"github.com/vesselwatch/replay/pkg/core"
)

const (
	// DefaultBaseRatio maps one real second to one virtual minute.
	DefaultBaseRatio = 60.0
	// DefaultDimmedOpacity is applied to non-focused markers in
	// single mode.
	DefaultDimmedOpacity = 0.25
)

// Renderer consumes the snapshot produced by each tick. An empty
// snapshot means all markers should be cleared.
type Renderer interface {
	Render(snap core.Snapshot)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(snap core.Snapshot)

func (f RendererFunc) Render(snap core.Snapshot) { f(snap) }

// LoadResult reports the outcome of one bulk dataset load.
type LoadResult struct {
	Stats trajectory.LoadStats
	// EntitiesWithoutWindow counts entities that loaded but carry no
	// timestamped point, so they never become active.
	EntitiesWithoutWindow int
}

// Engine composes the registry and the store into the playback clock.
// Ticks are serialized by the single external driver; the engine adds
// no locking of its own.
type Engine struct {
	registry *registry.Registry
	store    *trajectory.Store
	wall     clock.Clock
	renderer Renderer
	sinks    []storage.Backend
	logger   *slog.Logger

	baseRatio float64
	dimmed    float64

	sessionName string
	datasetPath string

	lastWall time.Time

	ticks          metric.Int64Counter
	droppedMarkers metric.Int64Counter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the wall clock, so tests can drive ticks
// deterministically.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.wall = c }
}

// WithRenderer sets the presentation port receiving every snapshot.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithSink appends a storage backend that records session output.
func WithSink(b storage.Backend) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, b) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBaseRatio sets how many virtual seconds elapse per real second
// at speed 1. Non-positive values are ignored.
func WithBaseRatio(ratio float64) Option {
	return func(e *Engine) {
		if ratio > 0 {
			e.baseRatio = ratio
		}
	}
}

// WithDimmedOpacity sets the opacity of non-focused markers in single
// mode. Values outside (0,1] are ignored.
func WithDimmedOpacity(opacity float64) Option {
	return func(e *Engine) {
		if opacity > 0 && opacity <= 1 {
			e.dimmed = opacity
		}
	}
}

// WithSession names the session reported to storage sinks.
func WithSession(name, datasetPath string) Option {
	return func(e *Engine) {
		e.sessionName = name
		e.datasetPath = datasetPath
	}
}

// New creates an Engine around the given registry and store. Uses the
// global OTel meter for metrics (no-op if not configured).
func New(reg *registry.Registry, store *trajectory.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry:  reg,
		store:     store,
		wall:      clock.NewReal(),
		logger:    slog.Default(),
		baseRatio: DefaultBaseRatio,
		dimmed:    DefaultDimmedOpacity,
	}
	for _, opt := range opts {
		opt(e)
	}

	m := meter()
	var err error

	e.ticks, err = m.Int64Counter(
		"playback.ticks",
		metric.WithDescription("Total playback ticks processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	e.droppedMarkers, err = m.Int64Counter(
		"playback.markers.dropped",
		metric.WithDescription("Markers dropped for non-finite coordinates"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped marker counter: %w", err)
	}

	return e, nil
}

// Load replaces the store and registry contents with a new dataset.
// Playback stops and the clock rewinds to the new global start.
func (e *Engine) Load(entities []core.Entity, explicit *core.TimeRange) LoadResult {
	stats := e.store.Load(entities)
	withoutWindow := e.registry.Initialize(entities, explicit)
	e.lastWall = time.Time{}

	e.logger.Info("dataset loaded",
		"entities", stats.Entities,
		"excluded_entities", stats.ExcludedEntities,
		"malformed_points", stats.MalformedPoints,
		"entities_without_window", withoutWindow,
	)
	return LoadResult{Stats: stats, EntitiesWithoutWindow: withoutWindow}
}

// Play transitions to Running. Resuming continues from the preserved
// current time; there is no separate paused state.
func (e *Engine) Play() {
	if e.registry.Playing() {
		return
	}
	g, ok := e.registry.GlobalRange()
	if !ok {
		e.logger.Warn("play requested with no loaded time range")
		return
	}

	e.registry.SetPlaying(true)
	e.lastWall = e.wall.Now()

	info := e.sessionInfo(g)
	for _, sink := range e.sinks {
		if err := sink.StartSession(info); err != nil {
			e.logger.Warn("sink rejected session start", "error", err)
		}
	}
}

// SessionInfo describes the session as it would be announced to sinks,
// or nil when no dataset is loaded.
func (e *Engine) SessionInfo() *core.SessionInfo {
	g, ok := e.registry.GlobalRange()
	if !ok {
		return nil
	}
	return e.sessionInfo(g)
}

func (e *Engine) sessionInfo(g core.TimeRange) *core.SessionInfo {
	return &core.SessionInfo{
		Name:        e.sessionName,
		DatasetPath: e.datasetPath,
		StartedAt:   e.lastWall,
		Window:      g,
		Speed:       e.registry.Speed(),
		BaseRatio:   e.baseRatio,
	}
}

// Stop transitions to Stopped, preserving the current time exactly.
func (e *Engine) Stop() {
	if !e.registry.Playing() {
		return
	}
	e.registry.SetPlaying(false)
	for _, sink := range e.sinks {
		if err := sink.EndSession(); err != nil {
			e.logger.Warn("sink failed to end session", "error", err)
		}
	}
}

// Tick advances the virtual clock by the wall time elapsed since the
// previous tick, scaled by base ratio and speed, then emits the
// snapshot for the new instant. Reaching the global end clamps, emits
// the final snapshot, and stops.
func (e *Engine) Tick() core.Snapshot {
	now := e.wall.Now()
	if !e.registry.Playing() {
		return e.snapshotAt(e.registry.CurrentTime())
	}

	elapsed := now.Sub(e.lastWall)
	e.lastWall = now
	if elapsed < 0 {
		elapsed = 0
	}

	delta := time.Duration(float64(elapsed) * e.baseRatio * e.registry.Speed())
	next := e.registry.CurrentTime().Add(delta)

	atEnd := false
	if g, ok := e.registry.GlobalRange(); ok && !next.Before(g.End) {
		next = g.End
		atEnd = true
	}

	applied := e.registry.SetCurrentTime(next)
	snap := e.snapshotAt(applied)
	e.emit(snap)
	e.ticks.Add(context.Background(), 1)

	if atEnd {
		e.Stop()
	}
	return snap
}

// Seek moves the clock directly, clamped into the global range, and
// emits the frame at the applied time. The wall reference resets so a
// following tick measures from the seek, not across it.
func (e *Engine) Seek(t time.Time) time.Time {
	applied := e.registry.SetCurrentTime(t)
	e.lastWall = e.wall.Now()
	e.emit(e.snapshotAt(applied))
	return applied
}

// SetSpeed changes the speed multiplier. The wall reference resets so
// the new rate applies from this instant without a positional jump.
func (e *Engine) SetSpeed(speed float64) {
	e.registry.SetSpeed(speed)
	e.lastWall = e.wall.Now()
}

// Focus enters single mode on the given entity. Ignored when the
// entity has no activity window.
func (e *Engine) Focus(id string) {
	e.registry.SetMode(core.ModeSingle, id)
}

// Unfocus returns to multi mode.
func (e *Engine) Unfocus() {
	e.registry.SetMode(core.ModeMulti, "")
}

// FocusedBounds returns the envelope of the focused entity in single
// mode, or of the whole dataset otherwise.
func (e *Engine) FocusedBounds() (core.Bounds, bool) {
	if e.registry.Mode() == core.ModeSingle {
		return e.store.BoundsOf([]string{e.registry.FocusID()})
	}
	return e.store.Bounds()
}

// State reports the externally visible clock state.
func (e *Engine) State() core.ClockState {
	return e.registry.State()
}

// Reset rewinds to the global start and stops playback.
func (e *Engine) Reset() {
	playing := e.registry.Playing()
	e.registry.Reset()
	e.lastWall = time.Time{}
	if playing {
		for _, sink := range e.sinks {
			if err := sink.EndSession(); err != nil {
				e.logger.Warn("sink failed to end session", "error", err)
			}
		}
	}
}

func (e *Engine) snapshotAt(t time.Time) core.Snapshot {
	mode := e.registry.Mode()
	focus := e.registry.FocusID()

	markers := make(map[string]core.Marker)
	for _, id := range e.registry.ActiveAt(t) {
		m, ok := e.store.Marker(id, t)
		if !ok {
			continue
		}
		if !geo.FiniteCoord(m.Lon, m.Lat) {
			e.droppedMarkers.Add(context.Background(), 1)
			continue
		}
		if mode == core.ModeSingle && id != focus {
			m.Opacity = e.dimmed
		}
		markers[id] = m
	}
	return core.Snapshot{Time: t, Markers: markers}
}

func (e *Engine) emit(snap core.Snapshot) {
	if e.renderer != nil {
		e.renderer.Render(snap)
	}
	for _, sink := range e.sinks {
		if err := sink.RecordSnapshot(&snap); err != nil {
			e.logger.Warn("sink failed to record snapshot", "error", err)
		}
	}
}
