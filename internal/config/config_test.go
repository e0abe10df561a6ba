package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("SERVER_ADDR")
	os.Unsetenv("WEBHOOK_TIMESTAMP_SKEW_SECONDS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("expected default env production, got %q", cfg.Env)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("expected default server addr :8080, got %q", cfg.ServerAddr)
	}
	if cfg.WebhookTimestampSkew != 300*time.Second {
		t.Errorf("expected default skew 300s, got %v", cfg.WebhookTimestampSkew)
	}
	if cfg.CalendarTimezone != "America/New_York" {
		t.Errorf("expected default timezone America/New_York, got %q", cfg.CalendarTimezone)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("APP_ENV", "development")
	os.Setenv("SERVER_ADDR", ":9090")
	os.Setenv("WEBHOOK_IP_WHITELIST", "10.0.0.0/8, 192.168.1.1/32")
	os.Setenv("SCHEDULER_WORKER_POOL_SIZE", "8")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("SERVER_ADDR")
		os.Unsetenv("WEBHOOK_IP_WHITELIST")
		os.Unsetenv("SCHEDULER_WORKER_POOL_SIZE")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "development" {
		t.Errorf("expected development, got %q", cfg.Env)
	}
	if cfg.ServerAddr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.ServerAddr)
	}
	if len(cfg.WebhookIPWhitelist) != 2 {
		t.Fatalf("expected 2 whitelist entries, got %d", len(cfg.WebhookIPWhitelist))
	}
	if cfg.WebhookIPWhitelist[0] != "10.0.0.0/8" || cfg.WebhookIPWhitelist[1] != "192.168.1.1/32" {
		t.Errorf("unexpected whitelist entries: %v", cfg.WebhookIPWhitelist)
	}
	if cfg.SchedulerWorkerPoolSize != 8 {
		t.Errorf("expected worker pool size 8, got %d", cfg.SchedulerWorkerPoolSize)
	}
}

func TestLoadInvalidIntReturnsError(t *testing.T) {
	os.Setenv("SCHEDULER_WORKER_POOL_SIZE", "not-a-number")
	defer os.Unsetenv("SCHEDULER_WORKER_POOL_SIZE")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid SCHEDULER_WORKER_POOL_SIZE")
	}
}
