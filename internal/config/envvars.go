package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// EnvVarMapping defines the mapping between environment variables and config paths.
var EnvVarMapping = map[string]string{
	"FINCH_HOST": "server.host",
	"FINCH_PORT": "server.port",
	// Storage settings
	"FINCH_STORAGE_MODE": "storage.mode",
	"FINCH_STORAGE_PATH": "storage.path",
	// Database settings
	"FINCH_DB_DRIVER":   "database.driver",
	"FINCH_DB_PATH":     "database.sqlite.path",
	"FINCH_DB_HOST":     "database.postgres.host",
	"FINCH_DB_PORT":     "database.postgres.port",
	"FINCH_DB_NAME":     "database.postgres.database",
	"FINCH_DB_USER":     "database.postgres.user",
	"FINCH_DB_PASSWORD": "database.postgres.password",
	"FINCH_DB_SSL_MODE": "database.postgres.ssl_mode",
	// Logging
	"FINCH_LOG_LEVEL":  "log.level",
	"FINCH_LOG_FORMAT": "log.format",
}

// ApplyEnvVars applies environment variable overrides to a TrackedConfig.
// Returns a sorted list of paths that were overridden.
func ApplyEnvVars(tc *TrackedConfig) []string {
	var overridden []string

	for envVar, configPath := range EnvVarMapping {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if Set(tc.Config, configPath, value) {
			tc.SetSource(configPath, SourceEnv)
			overridden = append(overridden, configPath)
		}
	}

	sort.Strings(overridden)
	return overridden
}

// Set applies a string value to the config path. Returns false if the path
// is unknown or the value does not parse.
func Set(cfg *Config, path string, value string) bool {
	switch path {
	case "server.host":
		cfg.Server.Host = value
	case "server.port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.Server.Port = v
	case "storage.mode":
		cfg.Storage.Mode = StorageMode(strings.ToLower(value))
	case "storage.path":
		cfg.Storage.Path = value
	case "database.driver":
		cfg.Database.Driver = strings.ToLower(value)
	case "database.sqlite.path":
		cfg.Database.SQLite.Path = value
	case "database.postgres.host":
		cfg.Database.Postgres.Host = value
	case "database.postgres.port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.Database.Postgres.Port = v
	case "database.postgres.database":
		cfg.Database.Postgres.Database = value
	case "database.postgres.user":
		cfg.Database.Postgres.User = value
	case "database.postgres.password":
		cfg.Database.Postgres.Password = value
	case "database.postgres.ssl_mode":
		cfg.Database.Postgres.SSLMode = value
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.format":
		cfg.Log.Format = strings.ToLower(value)
	default:
		return false
	}
	return true
}

// Paths returns every settable config path, sorted.
func Paths() []string {
	paths := make([]string, 0, len(EnvVarMapping))
	for _, p := range EnvVarMapping {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Get returns the string form of the value at path. The postgres password
// is masked.
func Get(cfg *Config, path string) (string, bool) {
	switch path {
	case "server.host":
		return cfg.Server.Host, true
	case "server.port":
		return strconv.Itoa(cfg.Server.Port), true
	case "storage.mode":
		return string(cfg.Storage.Mode), true
	case "storage.path":
		return cfg.Storage.Path, true
	case "database.driver":
		return cfg.Database.Driver, true
	case "database.sqlite.path":
		return cfg.Database.SQLite.Path, true
	case "database.postgres.host":
		return cfg.Database.Postgres.Host, true
	case "database.postgres.port":
		return strconv.Itoa(cfg.Database.Postgres.Port), true
	case "database.postgres.database":
		return cfg.Database.Postgres.Database, true
	case "database.postgres.user":
		return cfg.Database.Postgres.User, true
	case "database.postgres.password":
		if cfg.Database.Postgres.Password == "" {
			return "", true
		}
		return "********", true
	case "database.postgres.ssl_mode":
		return cfg.Database.Postgres.SSLMode, true
	case "log.level":
		return cfg.Log.Level, true
	case "log.format":
		return cfg.Log.Format, true
	}
	return "", false
}
