// Package config reads efql settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/efaps/efql/internal/querysql"
)

// Environment keys.
const (
	EnvDB        = "EFQL_DB"
	EnvModel     = "EFQL_MODEL"
	EnvDialect   = "EFQL_DIALECT"
	EnvAmbiguity = "EFQL_AMBIGUITY"
	EnvMaxDepth  = "EFQL_MAX_DEPTH"
	EnvLogLevel  = "EFQL_LOG_LEVEL"
)

// Config holds all settings. CLI flags override the loaded values.
type Config struct {
	DB        string // database DSN: file path or libsql:// URL
	Model     string // admin model directory or .cue file
	Dialect   string // sqlite or postgres
	Ambiguity string // first or error
	MaxDepth  int    // nested query depth limit
	LogLevel  string // debug, info, warn or error
}

// Load seeds the environment from envFiles (".env" when none are given),
// ignoring missing files, and reads the configuration. Variables already
// set win over file values. A file that exists but does not parse is an
// error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// Load never overrides variables already in the environment.
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv reads the configuration from environment variables with
// defaults.
func FromEnv() Config {
	maxDepth := querysql.DefaultMaxDepth
	if val := os.Getenv(EnvMaxDepth); val != "" {
		if d, err := strconv.Atoi(val); err == nil && d > 0 {
			maxDepth = d
		}
	}
	return Config{
		DB:        getEnv(EnvDB, "efql.db"),
		Model:     getEnv(EnvModel, "model"),
		Dialect:   getEnv(EnvDialect, "sqlite"),
		Ambiguity: getEnv(EnvAmbiguity, "first"),
		MaxDepth:  maxDepth,
		LogLevel:  getEnv(EnvLogLevel, "warn"),
	}
}

// QueryOptions converts the compiler settings. logger may be nil.
func (c Config) QueryOptions(logger *slog.Logger) (querysql.Options, error) {
	dialect, err := querysql.ParseDialect(c.Dialect)
	if err != nil {
		return querysql.Options{}, err
	}
	ambiguity, err := querysql.ParseAmbiguity(c.Ambiguity)
	if err != nil {
		return querysql.Options{}, err
	}
	return querysql.Options{
		Dialect:   dialect,
		Ambiguity: ambiguity,
		MaxDepth:  c.MaxDepth,
		Logger:    logger,
	}, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
