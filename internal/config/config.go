// Package config loads runtime configuration from the environment, with an
// optional .env preload for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for one service instance.
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	// ExamDataPath, when set, is loaded at startup; otherwise the session
	// stays empty until POST /session/load.
	ExamDataPath string
	// ReportPath is the default output path for generated reports (without
	// extension; the renderer appends .txt / .xlsx).
	ReportPath string

	// RedisURL enables the live status mirror when non-empty.
	RedisURL             string
	StatusMirrorInterval time.Duration

	// Placeholder operator credentials. Real authentication is out of scope;
	// these guard the UI the way the original hardcoded login did.
	AdminUser string
	AdminPass string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             parseLogLevel(getEnv("LOG_LEVEL", "info")),
		ExamDataPath:         os.Getenv("EXAM_DATA_PATH"),
		ReportPath:           getEnv("REPORT_PATH", "examReport"),
		RedisURL:             os.Getenv("REDIS_URL"),
		StatusMirrorInterval: durationEnv("STATUS_MIRROR_INTERVAL", 5*time.Second),
		AdminUser:            getEnv("ADMIN_USER", "Administrator"),
		AdminPass:            getEnv("ADMIN_PASS", "cs3307"),
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
