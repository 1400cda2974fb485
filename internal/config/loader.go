package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads the given .env files (default ".env") into the environment,
// overriding existing values. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Overload(present...)
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, "MOBIDASH_DATABASE_URL is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("MOBIDASH_STORAGE (%q) must be one of: memory, file, postgres", c.Storage.Backend))
	}
	if c.Storage.Backend == BackendFile && c.Storage.DataDir == "" {
		errs = append(errs, "MOBIDASH_DATA_DIR is required for the file backend")
	}
	if c.Storage.MaxConns <= 0 {
		errs = append(errs, "MOBIDASH_DB_MAX_CONNS must be positive")
	}
	if c.Storage.MinConns < 0 || c.Storage.MinConns > c.Storage.MaxConns {
		errs = append(errs, fmt.Sprintf("MOBIDASH_DB_MIN_CONNS (%d) must be between 0 and MOBIDASH_DB_MAX_CONNS (%d)",
			c.Storage.MinConns, c.Storage.MaxConns))
	}
	if c.Storage.QueryTimeout <= 0 {
		errs = append(errs, "MOBIDASH_DB_QUERY_TIMEOUT must be positive")
	}
	if k := c.Storage.EncryptionKey; k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			errs = append(errs, "MOBIDASH_ENCRYPTION_KEY must be 64 hex characters (32 bytes)")
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("MOBIDASH_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, "server timeouts must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "MOBIDASH_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Import.MaxFileSize <= 0 || c.Import.MaxFileSize > validate.MaxFileSize {
		errs = append(errs, fmt.Sprintf("MOBIDASH_IMPORT_MAX_FILE_SIZE must be between 1 and %d", validate.MaxFileSize))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe representation of the config for logging.
// The database URL and encryption key are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q, CORSOrigins: %v}, ", c.Server.Addr(), c.Server.CORSOrigins)
	fmt.Fprintf(&b, "Storage: {Backend: %q, DataDir: %q, DatabaseURL: %s, KeyPrefix: %q, EncryptionKey: %s}, ",
		c.Storage.Backend, c.Storage.DataDir, mask(c.Storage.DatabaseURL), c.Storage.KeyPrefix, mask(c.Storage.EncryptionKey))
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d}, ", c.Import.MaxFileSize)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
