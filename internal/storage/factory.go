// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vesselwatch/replay/internal/config"
	"github.com/vesselwatch/replay/internal/database"
	"github.com/vesselwatch/replay/internal/storage/gormdb"
	"github.com/vesselwatch/replay/internal/storage/memory"
)

// NewBackends creates the storage backends selected by configuration.
// "none" yields an empty slice; playback then runs without archival.
func NewBackends(cfg config.StorageConfig, log zerolog.Logger) ([]Backend, error) {
	switch cfg.Type {
	case "memory":
		return []Backend{memory.New(cfg.Memory)}, nil
	case "database":
		return []Backend{gormdb.New(database.NewManager(log))}, nil
	case "both":
		return []Backend{
			memory.New(cfg.Memory),
			gormdb.New(database.NewManager(log)),
		}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
