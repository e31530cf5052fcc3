package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulmohankumar24/finch-demo/internal/config"
	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

func TestNewBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Database.SQLite.Path = filepath.Join(dir, "finch.db")
	b, err := NewBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &DatabaseBackend{}, b)
	require.NoError(t, b.Close())

	cfg.Storage.Mode = config.StorageModeFile
	cfg.Storage.Path = filepath.Join(dir, "matters.yaml")
	b, err = NewBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	cfg.Storage.Mode = config.StorageModeMemory
	b, err = NewBackend(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	cfg.Storage.Mode = "cloud"
	_, err = NewBackend(ctx, cfg)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeConfigInvalid))

	cfg.Storage.Mode = config.StorageModeDatabase
	cfg.Database.Driver = "mysql"
	_, err = NewBackend(ctx, cfg)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeConfigInvalid))
}
