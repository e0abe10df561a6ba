// Package config loads runtime configuration from environment variables,
// the only configuration idiom observed anywhere in the retrieval pack
// (lcgerke-schedCU/v2/cmd/server/main.go reads SERVER_ADDR and APP_ENV
// directly via os.Getenv, with no config library in its import graph).
// This is the one ambient package deliberately built on the standard
// library rather than a third-party dependency (see DESIGN.md).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all environment-derived settings for the core.
type Config struct {
	Env        string // APP_ENV: "development" or "production"
	ServerAddr string // SERVER_ADDR, e.g. ":8080"

	DatabaseURL string // DATABASE_URL, postgres connection string
	RedisAddr   string // REDIS_ADDR, for the scheduler's distributed lock

	WebhookIPWhitelist []string      // WEBHOOK_IP_WHITELIST, comma-separated CIDRs
	WebhookMaxBodyBytes int64        // WEBHOOK_MAX_BODY_BYTES
	WebhookTimestampSkew time.Duration // WEBHOOK_TIMESTAMP_SKEW_SECONDS

	ImportMaxFileSizeBytes int64 // IMPORT_MAX_FILE_SIZE_BYTES

	SchedulerWorkerPoolSize int // SCHEDULER_WORKER_POOL_SIZE

	CalendarTimezone string // CALENDAR_TIMEZONE, default America/New_York
}

// Load reads Config from the environment, applying the same defaults the
// teacher's main.go applies inline (":8080" for the listen address) and
// spec.md's stated defaults for the rest.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        getenv("APP_ENV", "production"),
		ServerAddr: getenv("SERVER_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),

		WebhookIPWhitelist: splitNonEmpty(os.Getenv("WEBHOOK_IP_WHITELIST")),

		ImportMaxFileSizeBytes: 25 * 1024 * 1024,

		SchedulerWorkerPoolSize: 4,

		CalendarTimezone: getenv("CALENDAR_TIMEZONE", "America/New_York"),
	}

	var err error
	cfg.WebhookMaxBodyBytes, err = getenvInt64("WEBHOOK_MAX_BODY_BYTES", 1*1024*1024)
	if err != nil {
		return nil, err
	}

	skewSeconds, err := getenvInt64("WEBHOOK_TIMESTAMP_SKEW_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.WebhookTimestampSkew = time.Duration(skewSeconds) * time.Second

	cfg.ImportMaxFileSizeBytes, err = getenvInt64("IMPORT_MAX_FILE_SIZE_BYTES", cfg.ImportMaxFileSizeBytes)
	if err != nil {
		return nil, err
	}

	cfg.SchedulerWorkerPoolSize, err = getenvInt("SCHEDULER_WORKER_POOL_SIZE", cfg.SchedulerWorkerPoolSize)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
