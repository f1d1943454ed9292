package config

import (
	"os"
	"strconv"
	"strings"

	"gokeyword/internal"
	"gokeyword/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Generate GenerateConfig
	Export   ExportConfig
	LogLevel internal.LogLevel
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// tool without a reference table; every generated row is left uncategorized.
type DatabaseConfig struct {
	URL     string
	Table   string
	SSLMode string
}

// Enabled reports whether a reference database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// DSN returns the connection string with SSLMode applied unless the URL
// already names an sslmode
func (d DatabaseConfig) DSN() string {
	if d.URL == "" || d.SSLMode == "" || strings.Contains(d.URL, "sslmode=") {
		return d.URL
	}
	if strings.Contains(d.URL, "://") {
		sep := "?"
		if strings.Contains(d.URL, "?") {
			sep = "&"
		}
		return d.URL + sep + "sslmode=" + d.SSLMode
	}
	return d.URL + " sslmode=" + d.SSLMode
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int
}

// MaxUploadBytes returns the request body cap in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// GenerateConfig holds combination engine settings
type GenerateConfig struct {
	MaxRows         int
	DedupeReference bool
}

// ExportConfig holds export settings
type ExportConfig struct {
	Basename string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Generate: loadGenerateConfig(),
		Export:   loadExportConfig(),
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, ok := internal.ParseLogLevel(raw)
		if !ok {
			return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
		}
		config.LogLevel = level
	} else {
		config.LogLevel = internal.LogLevelInfo
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		Table:   getEnvOrDefault("REGION_TABLE", "korean_regions"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
	}
}

func loadGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxRows:         getEnvIntOrDefault("MAX_GENERATED_ROWS", 1_000_000),
		DedupeReference: getEnvBoolOrDefault("DEDUPE_REFERENCE", false),
	}
}

func loadExportConfig() ExportConfig {
	return ExportConfig{
		Basename: getEnvOrDefault("EXPORT_BASENAME", "combined_keywords"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Generate.MaxRows < 0 {
		return errors.ConfigInvalid("MAX_GENERATED_ROWS cannot be negative")
	}
	if !validIdentifier(config.Database.Table) {
		return errors.ConfigInvalid("REGION_TABLE must be a plain SQL identifier")
	}
	if strings.ContainsAny(config.Export.Basename, `/\`) || config.Export.Basename == "" {
		return errors.ConfigInvalid("EXPORT_BASENAME must be a bare file name")
	}
	return nil
}

// validIdentifier accepts lowercase SQL identifiers; the table name is
// interpolated into queries.
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
