// Package config loads the server configuration from environment variables.
//
// Every setting has a default suited to local development, so the server
// starts with no environment at all:
//
//	PORT                  3000
//	DB_PATH               data/whiskerbook.db   (":memory:" for a throwaway store)
//	LOG_LEVEL             info                  (debug | info | warn | error)
//	SERVICE_NAME          whiskerbook-api       (reported by GET /health)
//	STATIC_DIR            public                (served when the directory exists)
//	CORS_ALLOWED_ORIGINS  *                     (comma-separated)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultPort        = 3000
	DefaultDBPath      = "data/whiskerbook.db"
	DefaultLogLevel    = "info"
	DefaultServiceName = "whiskerbook-api"
	DefaultStaticDir   = "public"
)

type Config struct {
	Port               int
	DBPath             string
	LogLevel           string
	ServiceName        string
	StaticDir          string
	CORSAllowedOrigins []string
}

// Load reads the environment. It only fails when a value cannot be parsed;
// call Validate for range checks.
func Load() (Config, error) {
	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:               port,
		DBPath:             getEnv("DB_PATH", DefaultDBPath),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		ServiceName:        getEnv("SERVICE_NAME", DefaultServiceName),
		StaticDir:          getEnv("STATIC_DIR", DefaultStaticDir),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel returns the configured level, falling back to info.
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func getEnvList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
