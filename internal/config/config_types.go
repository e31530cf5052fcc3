package config

// Config represents the finch configuration.
type Config struct {
	// Version is the config file format version.
	Version int `yaml:"version"`

	// Server contains HTTP server settings for finch serve.
	Server ServerConfig `yaml:"server"`

	// Storage selects where matters and clients are persisted.
	Storage StorageConfig `yaml:"storage"`

	// Database contains connection settings for database storage.
	Database DatabaseConfig `yaml:"database"`

	// Log controls the process logger.
	Log LogConfig `yaml:"log"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageMode defines how finch stores matters.
type StorageMode string

const (
	// StorageModeDatabase stores matters in SQLite or PostgreSQL.
	StorageModeDatabase StorageMode = "database"
	// StorageModeFile stores matters in a single YAML document.
	StorageModeFile StorageMode = "file"
	// StorageModeMemory keeps matters in process memory only.
	StorageModeMemory StorageMode = "memory"
)

// StorageConfig defines how finch stores matter data.
// This is separate from DatabaseConfig which handles connection settings.
type StorageConfig struct {
	// Mode is the storage mode: database | file | memory
	Mode StorageMode `yaml:"mode"`

	// Path is the snapshot file used in file mode.
	Path string `yaml:"path"`
}

// DatabaseConfig defines database connection settings.
type DatabaseConfig struct {
	// Driver is the database type: "sqlite" or "postgres"
	Driver string `yaml:"driver"`

	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig defines SQLite settings.
type SQLiteConfig struct {
	// Path is the database file, or ":memory:".
	Path string `yaml:"path"`
}

// PostgresConfig defines PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` // Use env FINCH_DB_PASSWORD
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level is debug | info | warn | error
	Level string `yaml:"level"`
	// Format is text | json
	Format string `yaml:"format"`
}

var (
	// ValidStorageModes are the allowed values for storage.mode
	ValidStorageModes = []string{string(StorageModeDatabase), string(StorageModeFile), string(StorageModeMemory)}

	// ValidLogLevels are the allowed values for log.level
	ValidLogLevels = []string{"debug", "info", "warn", "error"}

	// ValidLogFormats are the allowed values for log.format
	ValidLogFormats = []string{"text", "json"}
)
