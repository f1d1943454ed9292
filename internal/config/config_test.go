package config

import (
	"testing"

	"gokeyword/internal"
	"gokeyword/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MAX_GENERATED_ROWS", "")
	t.Setenv("DEDUPE_REFERENCE", "")
	t.Setenv("REGION_TABLE", "")
	t.Setenv("EXPORT_BASENAME", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "korean_regions", cfg.Database.Table)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.MaxUploadMB)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, 1_000_000, cfg.Generate.MaxRows)
	assert.False(t, cfg.Generate.DedupeReference)
	assert.Equal(t, "combined_keywords", cfg.Export.Basename)
	assert.Equal(t, internal.LogLevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/regions?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_GENERATED_ROWS", "500")
	t.Setenv("DEDUPE_REFERENCE", "true")
	t.Setenv("REGION_TABLE", "regions_v2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "regions_v2", cfg.Database.Table)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, internal.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 500, cfg.Generate.MaxRows)
	assert.True(t, cfg.Generate.DedupeReference)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "LOUD"},
		{"negative row cap", "MAX_GENERATED_ROWS", "-1"},
		{"table injection", "REGION_TABLE", "regions; drop table x"},
		{"basename with path", "EXPORT_BASENAME", "../out"},
		{"zero upload size", "MAX_UPLOAD_MB", "0"},
		{"unknown gin mode", "GIN_MODE", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"empty", DatabaseConfig{SSLMode: "disable"}, ""},
		{"url", DatabaseConfig{URL: "postgres://u@h/db", SSLMode: "disable"}, "postgres://u@h/db?sslmode=disable"},
		{"url with query", DatabaseConfig{URL: "postgres://u@h/db?connect_timeout=5", SSLMode: "require"}, "postgres://u@h/db?connect_timeout=5&sslmode=require"},
		{"explicit sslmode", DatabaseConfig{URL: "postgres://u@h/db?sslmode=verify-full", SSLMode: "disable"}, "postgres://u@h/db?sslmode=verify-full"},
		{"key value", DatabaseConfig{URL: "host=h dbname=db", SSLMode: "disable"}, "host=h dbname=db sslmode=disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
