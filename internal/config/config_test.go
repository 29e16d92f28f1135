package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("KLUSTER_API_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.KlusterTimeout != 300*time.Second {
		t.Fatalf("expected default kluster timeout, got %s", cfg.KlusterTimeout)
	}
	if cfg.KlusterRetryAttempts != 3 {
		t.Fatalf("expected 3 retry attempts, got %d", cfg.KlusterRetryAttempts)
	}
	if cfg.DefaultMedium != "english" {
		t.Fatalf("expected default medium, got %s", cfg.DefaultMedium)
	}
	if cfg.ProcessingLockTTL != 60*time.Second {
		t.Fatalf("expected default processing lock ttl, got %s", cfg.ProcessingLockTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KLUSTER_API_URL", "https://kluster.example.com/api/")
	t.Setenv("KLUSTER_BOT_ID", "bot-42")
	t.Setenv("KLUSTER_RETRY_ATTEMPTS", "5")
	t.Setenv("KLUSTER_RETRY_BASE_DELAY", "2s")
	t.Setenv("PROCESSING_LOCK_TTL", "30s")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.KlusterAPIURL != "https://kluster.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.KlusterAPIURL)
	}
	if cfg.KlusterBotID != "bot-42" {
		t.Fatalf("expected bot id override, got %s", cfg.KlusterBotID)
	}
	if cfg.KlusterRetryAttempts != 5 {
		t.Fatalf("expected retry override, got %d", cfg.KlusterRetryAttempts)
	}
	if cfg.KlusterRetryBaseDelay != 2*time.Second {
		t.Fatalf("expected base delay override, got %s", cfg.KlusterRetryBaseDelay)
	}
	if cfg.ProcessingLockTTL != 30*time.Second {
		t.Fatalf("expected lock ttl override, got %s", cfg.ProcessingLockTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
}
