package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efaps/efql/internal/querysql"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvDB, EnvModel, EnvDialect, EnvAmbiguity, EnvMaxDepth, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	assert.Equal(t, Config{
		DB:        "efql.db",
		Model:     "model",
		Dialect:   "sqlite",
		Ambiguity: "first",
		MaxDepth:  querysql.DefaultMaxDepth,
		LogLevel:  "warn",
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "libsql://db.example.com")
	t.Setenv(EnvDialect, "postgres")
	t.Setenv(EnvMaxDepth, "3")

	cfg := FromEnv()
	assert.Equal(t, "libsql://db.example.com", cfg.DB)
	assert.Equal(t, "postgres", cfg.Dialect)
	assert.Equal(t, 3, cfg.MaxDepth)
}

func TestFromEnv_InvalidDepthKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxDepth, "-2")
	assert.Equal(t, querysql.DefaultMaxDepth, FromEnv().MaxDepth)

	t.Setenv(EnvMaxDepth, "deep")
	assert.Equal(t, querysql.DefaultMaxDepth, FromEnv().MaxDepth)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EFQL_MODEL=fixtures/model\nEFQL_AMBIGUITY=error\n"), 0o644))
	t.Setenv(EnvAmbiguity, "first")
	t.Cleanup(func() { os.Unsetenv(EnvModel) })

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "fixtures/model", cfg.Model)
	// the environment wins over the file
	assert.Equal(t, "first", cfg.Ambiguity)
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("EFQL_MODEL='unterminated\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
	assert.Contains(t, err.Error(), "bad.env")
}

func TestQueryOptions(t *testing.T) {
	cfg := Config{Dialect: "postgres", Ambiguity: "error", MaxDepth: 4}

	opts, err := cfg.QueryOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, querysql.Postgres, opts.Dialect)
	assert.Equal(t, querysql.ErrorOnAmbiguity, opts.Ambiguity)
	assert.Equal(t, 4, opts.MaxDepth)

	_, err = Config{Dialect: "oracle"}.QueryOptions(nil)
	assert.Error(t, err)
	_, err = Config{Ambiguity: "maybe"}.QueryOptions(nil)
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Config{LogLevel: tt.in}.Level()
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
