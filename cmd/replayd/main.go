// Command replayd loads a vessel trajectory dataset and replays it on
// a virtual clock, recording the rendered snapshots to the configured
// storage backends.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vesselwatch/replay/internal/config"
	"github.com/vesselwatch/replay/internal/loader"
	"github.com/vesselwatch/replay/internal/logging"
	"github.com/vesselwatch/replay/internal/metrics"
	intOtel "github.com/vesselwatch/replay/internal/otel"
	"github.com/vesselwatch/replay/internal/playback"
	"github.com/vesselwatch/replay/internal/registry"
	"github.com/vesselwatch/replay/internal/session"
	"github.com/vesselwatch/replay/internal/storage"
	"github.com/vesselwatch/replay/internal/trajectory"
	"github.com/vesselwatch/replay/pkg/core"
)

var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	appName = "replayd"
)

func main() {
	configDir := flag.String("config", ".", "directory containing replay.cfg.json")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	cfg, err := config.Snapshot()
	if err != nil {
		return err
	}

	sessionStart := time.Now()

	if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(cfg.LogsDir, appName, sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	// OTel log export rides on its own file next to the main log
	var otelWriter *os.File
	if cfg.Otel.Enabled {
		otelWriter, err = os.Create(logging.LogFilePath(cfg.LogsDir, appName+".otel", sessionStart))
		if err != nil {
			return fmt.Errorf("creating otel log file: %w", err)
		}
		defer otelWriter.Close()
	}

	batchTimeout, err := time.ParseDuration(cfg.Otel.BatchTimeout)
	if err != nil {
		batchTimeout = 5 * time.Second
	}
	otelProvider, err := intOtel.New(intOtel.Config{
		Enabled:      cfg.Otel.Enabled,
		ServiceName:  cfg.Otel.ServiceName,
		BatchTimeout: batchTimeout,
		LogWriter:    otelWriter,
		Endpoint:     cfg.Otel.Endpoint,
		Insecure:     cfg.Otel.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	defer otelProvider.Shutdown(context.Background())

	slogManager := logging.NewSlogManager()
	slogManager.Setup(logFile, cfg.LogLevel, otelProvider.LoggerProvider())
	defer slogManager.Flush(context.Background())

	sessCtx := session.NewContext(cfg.Dataset.SessionName)
	logger := slog.New(logging.NewContextHandler(slogManager.Logger().Handler(), sessCtx))

	logger.Info("starting", "app", appName, "version", Version, "build_date", BuildDate)

	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	backends, err := storage.NewBackends(cfg.Storage, zlog)
	if err != nil {
		return err
	}
	sinks := backends[:0]
	for _, b := range backends {
		if err := b.Init(); err != nil {
			logger.Warn("storage backend unavailable", "error", err)
			continue
		}
		sinks = append(sinks, b)
		defer b.Close()
	}

	var influx *metrics.Manager
	if cfg.Influx.Enabled {
		backupPath := filepath.Join(cfg.LogsDir, "influx_backup.lp.gz")
		influx = metrics.NewManager(zlog, backupPath)
		if err := influx.Connect(); err != nil {
			logger.Warn("influx unavailable, metrics disabled", "error", err)
			influx = nil
		} else {
			defer influx.Close()
		}
	}

	entities, explicit, loadStats, err := loader.New(logger).LoadFile(cfg.Dataset.Path)
	if err != nil {
		return err
	}
	logger.Info("dataset read",
		"path", cfg.Dataset.Path,
		"vessels", loadStats.Vessels,
		"points", loadStats.Points,
		"malformed_timestamps", loadStats.MalformedTimestamps,
		"missing_coordinates", loadStats.MissingCoordinates,
	)

	store := trajectory.NewStore(
		trajectory.WithHomeCategory(cfg.Palette.HomeCategory),
		trajectory.WithFallbackColor(cfg.Palette.FallbackColor),
	)
	reg := registry.New()

	opts := []playback.Option{
		playback.WithLogger(logger),
		playback.WithBaseRatio(cfg.Playback.BaseRatio),
		playback.WithDimmedOpacity(cfg.Playback.DimmedOpacity),
		playback.WithSession(cfg.Dataset.SessionName, cfg.Dataset.Path),
	}
	for _, sink := range sinks {
		opts = append(opts, playback.WithSink(sink))
	}
	if cfg.LogLevel == "debug" {
		opts = append(opts, playback.WithRenderer(playback.RendererFunc(func(s core.Snapshot) {
			logger.Debug("frame", "virtual_time", s.Time, "markers", len(s.Markers))
		})))
	}

	engine, err := playback.New(reg, store, opts...)
	if err != nil {
		return err
	}

	result := engine.Load(entities, explicit)
	if result.Stats.Entities == 0 {
		logger.Warn("dataset holds no usable vessels, nothing to replay")
		return nil
	}
	engine.SetSpeed(cfg.Playback.Speed)

	if bounds, ok := engine.FocusedBounds(); ok {
		logger.Info("dataset bounds",
			"center_lon", bounds.CenterLon,
			"center_lat", bounds.CenterLat,
			"lon_span", bounds.LonSpan,
			"lat_span", bounds.LatSpan,
		)
	}

	engine.Play()
	defer engine.Stop()

	if influx != nil {
		if info := engine.SessionInfo(); info != nil {
			if err := influx.WriteSessionEvent(context.Background(), info, "start"); err != nil {
				logger.Debug("session metric dropped", "error", err)
			}
			defer influx.WriteSessionEvent(context.Background(), info, "end")
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.Playback.TickMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
			return nil
		case <-ticker.C:
			tickStart := time.Now()
			snap := engine.Tick()
			tickCost := time.Since(tickStart)
			sessCtx.SetVirtualTime(snap.Time)
			if influx != nil {
				err := influx.WriteTickPoint(context.Background(), sessCtx.Name(),
					tickCost, len(snap.Markers), snap.Time)
				if err != nil {
					logger.Debug("tick metric dropped", "error", err)
				}
			}
			for _, sink := range sinks {
				if rec, ok := sink.(storage.PerformanceRecorder); ok {
					if err := rec.RecordPerformance(snap.Time, len(snap.Markers), tickCost); err != nil {
						logger.Debug("performance row dropped", "error", err)
					}
				}
			}
			if !engine.State().Playing {
				logger.Info("replay finished", "virtual_time", snap.Time)
				reportExports(logger, sinks)
				return nil
			}
		}
	}
}

// reportExports logs the artifacts produced by exportable sinks.
func reportExports(logger *slog.Logger, sinks []storage.Backend) {
	for _, sink := range sinks {
		if exp, ok := sink.(storage.Exportable); ok {
			if path := exp.ExportedFilePath(); path != "" {
				logger.Info("session exported", "path", path)
			}
		}
	}
}
