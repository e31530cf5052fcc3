// Package config provides configuration management for finch.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rahulmohankumar24/finch-demo/internal/db/driver"
	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

const (
	// FinchDir is the finch configuration directory name.
	FinchDir = ".finch"
	// ConfigFileName is the config file name.
	ConfigFileName = "config.yaml"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: StorageConfig{
			Mode: StorageModeDatabase,
			Path: filepath.Join(FinchDir, "matters.yaml"),
		},
		Database: DatabaseConfig{
			Driver: string(driver.DialectSQLite),
			SQLite: SQLiteConfig{
				Path: filepath.Join(FinchDir, "finch.db"),
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "finch",
				User:     "finch",
				SSLMode:  "disable",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFrom loads configuration from a single file on top of the defaults.
// A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fincherrors.ErrConfigInvalid("server.port", fmt.Sprintf("%d is out of range 1-65535", c.Server.Port))
	}
	if !slices.Contains(ValidStorageModes, string(c.Storage.Mode)) {
		return fincherrors.ErrConfigInvalid("storage.mode", fmt.Sprintf("%q must be one of %v", c.Storage.Mode, ValidStorageModes))
	}
	if c.Storage.Mode == StorageModeFile && c.Storage.Path == "" {
		return fincherrors.ErrConfigMissing("storage.path")
	}
	if c.Storage.Mode == StorageModeDatabase {
		dialect, err := driver.ParseDialect(c.Database.Driver)
		if err != nil {
			return fincherrors.ErrConfigInvalid("database.driver", err.Error())
		}
		if dialect == driver.DialectSQLite && c.Database.SQLite.Path == "" {
			return fincherrors.ErrConfigMissing("database.sqlite.path")
		}
		if dialect == driver.DialectPostgres && c.Database.Postgres.Host == "" {
			return fincherrors.ErrConfigMissing("database.postgres.host")
		}
	}
	if !slices.Contains(ValidLogLevels, c.Log.Level) {
		return fincherrors.ErrConfigInvalid("log.level", fmt.Sprintf("%q must be one of %v", c.Log.Level, ValidLogLevels))
	}
	if !slices.Contains(ValidLogFormats, c.Log.Format) {
		return fincherrors.ErrConfigInvalid("log.format", fmt.Sprintf("%q must be one of %v", c.Log.Format, ValidLogFormats))
	}
	return nil
}

// Dialect returns the configured database dialect.
func (c *DatabaseConfig) Dialect() (driver.Dialect, error) {
	return driver.ParseDialect(c.Driver)
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if d, err := c.Dialect(); err == nil && d == driver.DialectPostgres {
		return c.Postgres.DSN()
	}
	return c.SQLite.Path
}

// DSN returns a postgres:// URL for the connection settings.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

// Addr returns the server listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
