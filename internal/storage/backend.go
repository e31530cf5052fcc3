// Package storage persists matter snapshots and the client directory.
// It supports three modes: a SQL database (SQLite or PostgreSQL), a single
// YAML file, and process memory.
package storage

import (
	"context"
	"time"

	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// Client is an entry in the client directory.
type Client struct {
	ID          string    `json:"clientId" yaml:"client_id"`
	Name        string    `json:"name" yaml:"name"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address     string    `json:"address,omitempty" yaml:"address,omitempty"`
	CreatedDate time.Time `json:"createdDate" yaml:"created_date"`
}

// Backend defines the storage operations for finch.
// All implementations must be safe for concurrent access.
type Backend interface {
	// Matter operations
	SaveMatter(ctx context.Context, m matter.MatterData) error
	LoadAllMatters(ctx context.Context) (map[string]matter.MatterData, error)
	// ReplaceAll discards every stored matter and stores the given set.
	// Clients are left untouched.
	ReplaceAll(ctx context.Context, matters map[string]matter.MatterData) error

	// Client operations
	SaveClient(ctx context.Context, c Client) error
	// LoadClient returns nil, nil when the client does not exist.
	LoadClient(ctx context.Context, id string) (*Client, error)
	LoadAllClients(ctx context.Context) ([]Client, error)

	// Close releases resources.
	Close() error
}
