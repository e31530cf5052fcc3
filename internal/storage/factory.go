package storage

import (
	"context"
	"fmt"

	"github.com/rahulmohankumar24/finch-demo/internal/config"
	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// NewBackend creates a storage backend based on the configuration.
// Database mode (the default) opens SQLite or PostgreSQL per
// database.driver.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Mode {
	case config.StorageModeDatabase, "":
		dialect, err := cfg.Database.Dialect()
		if err != nil {
			return nil, fincherrors.ErrConfigInvalid("database.driver", err.Error())
		}
		return NewDatabaseBackend(ctx, cfg.Database.DSN(), dialect)
	case config.StorageModeFile:
		if cfg.Storage.Path == "" {
			return nil, fincherrors.ErrConfigMissing("storage.path")
		}
		return NewFileBackend(cfg.Storage.Path), nil
	case config.StorageModeMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fincherrors.ErrConfigInvalid("storage.mode", fmt.Sprintf("unknown storage mode: %s", cfg.Storage.Mode))
	}
}
