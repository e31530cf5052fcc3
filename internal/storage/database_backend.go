package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rahulmohankumar24/finch-demo/internal/db"
	"github.com/rahulmohankumar24/finch-demo/internal/db/driver"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// DatabaseBackend stores matters and clients in SQLite or PostgreSQL.
// database/sql handles connection-level concurrency.
type DatabaseBackend struct {
	db     *db.MatterDB
	logger *slog.Logger
}

// NewDatabaseBackend opens and migrates the matter store at dsn.
func NewDatabaseBackend(ctx context.Context, dsn string, dialect driver.Dialect) (*DatabaseBackend, error) {
	mdb, err := db.OpenMatterDB(ctx, dsn, dialect)
	if err != nil {
		return nil, fmt.Errorf("open matter database: %w", err)
	}
	return &DatabaseBackend{db: mdb, logger: slog.Default()}, nil
}

// NewInMemoryBackend creates a database backend on a private in-memory
// SQLite database.
func NewInMemoryBackend(ctx context.Context) (*DatabaseBackend, error) {
	mdb, err := db.OpenMatterDBInMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return &DatabaseBackend{db: mdb, logger: slog.Default()}, nil
}

// SetLogger sets the logger for warnings.
func (d *DatabaseBackend) SetLogger(l *slog.Logger) {
	d.logger = l
}

// DB returns the underlying matter store.
func (d *DatabaseBackend) DB() *db.MatterDB {
	return d.db
}

// SaveMatter writes one matter with all tasks and dependencies in a single
// transaction.
func (d *DatabaseBackend) SaveMatter(ctx context.Context, m matter.MatterData) error {
	if err := d.db.SaveMatter(ctx, matterToRecord(m)); err != nil {
		return fmt.Errorf("save matter: %w", err)
	}
	return nil
}

// LoadAllMatters loads every stored matter keyed by ID.
func (d *DatabaseBackend) LoadAllMatters(ctx context.Context) (map[string]matter.MatterData, error) {
	recs, err := d.db.ListMatters(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matters: %w", err)
	}
	out := make(map[string]matter.MatterData, len(recs))
	for _, rec := range recs {
		out[rec.Matter.ID] = recordToMatter(rec)
	}
	d.logger.Debug("loaded matters", "count", len(out), "dialect", d.db.Dialect())
	return out, nil
}

// ReplaceAll replaces the stored matter set in one transaction.
func (d *DatabaseBackend) ReplaceAll(ctx context.Context, matters map[string]matter.MatterData) error {
	recs := make([]*db.MatterRecord, 0, len(matters))
	for _, md := range matters {
		recs = append(recs, matterToRecord(md))
	}
	if err := d.db.ReplaceAll(ctx, recs); err != nil {
		return fmt.Errorf("replace matters: %w", err)
	}
	return nil
}

// SaveClient inserts or updates a client.
func (d *DatabaseBackend) SaveClient(ctx context.Context, c Client) error {
	return d.db.SaveClient(ctx, clientToRow(c))
}

// LoadClient loads one client. Returns nil, nil if it does not exist.
func (d *DatabaseBackend) LoadClient(ctx context.Context, id string) (*Client, error) {
	row, err := d.db.GetClient(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	c := rowToClient(row)
	return &c, nil
}

// LoadAllClients returns every client ordered by name.
func (d *DatabaseBackend) LoadAllClients(ctx context.Context) ([]Client, error) {
	rows, err := d.db.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToClient(r))
	}
	return out, nil
}

// Close closes the database.
func (d *DatabaseBackend) Close() error {
	return d.db.Close()
}
