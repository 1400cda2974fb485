// Package config loads the dashboard's settings from environment variables
// with defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Import  ImportConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"MOBIDASH_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 7070)
	Port int `env:"MOBIDASH_PORT" envAlt:"PORT" default:"7070"`

	ReadTimeout  time.Duration `env:"MOBIDASH_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"MOBIDASH_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"MOBIDASH_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"MOBIDASH_SHUTDOWN_TIMEOUT" default:"15s"`

	// CORSOrigins is a comma-separated list of allowed origins; "*" allows any.
	CORSOrigins []string `env:"MOBIDASH_CORS_ORIGINS" default:"*"`
}

// StorageConfig selects and tunes the key-value backend.
type StorageConfig struct {
	// Backend is one of memory, file, postgres (default: file)
	Backend string `env:"MOBIDASH_STORAGE" default:"file"`

	// DataDir holds the JSON snapshot of the file backend.
	DataDir string `env:"MOBIDASH_DATA_DIR" default:"./data"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres backend.
	DatabaseURL string `env:"MOBIDASH_DATABASE_URL" envAlt:"DATABASE_URL"`

	MaxConns     int           `env:"MOBIDASH_DB_MAX_CONNS" default:"10"`
	MinConns     int           `env:"MOBIDASH_DB_MIN_CONNS" default:"1"`
	QueryTimeout time.Duration `env:"MOBIDASH_DB_QUERY_TIMEOUT" default:"5s"`

	// KeyPrefix namespaces the chart and table collection keys.
	KeyPrefix string `env:"MOBIDASH_KEY_PREFIX" default:"mobidash_"`

	// EncryptionKey is an optional 32-byte key in hex. When set, values are encrypted at rest.
	EncryptionKey string `env:"MOBIDASH_ENCRYPTION_KEY"`
}

// ImportConfig bounds uploaded files.
type ImportConfig struct {
	// MaxFileSize is the request body limit for uploads in bytes (default: 5MiB)
	MaxFileSize int64 `env:"MOBIDASH_IMPORT_MAX_FILE_SIZE" default:"5242880"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
