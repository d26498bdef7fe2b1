package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "TASKS_SNAPSHOT_PATH",
		"VENDOR_BASE_URL", "VENDOR_BILLING_URL", "VENDOR_TIMEOUT_SECONDS",
		"DEV_CREDITS_GRANT", "HTTP_READ_TIMEOUT_SECONDS",
		"HTTP_WRITE_TIMEOUT_SECONDS", "HTTP_IDLE_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SnapshotPath != "./data/tasks.json" {
		t.Errorf("SnapshotPath = %q", cfg.SnapshotPath)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.DevCreditsGrant != 500 {
		t.Errorf("DevCreditsGrant = %d, want 500", cfg.DevCreditsGrant)
	}
	if cfg.VendorTimeout != 30*time.Second {
		t.Errorf("VendorTimeout = %v, want 30s", cfg.VendorTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/orchestrator")
	t.Setenv("DEV_CREDITS_GRANT", "50")
	t.Setenv("VENDOR_TIMEOUT_SECONDS", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppEnv != "production" || cfg.Port != "9090" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DevCreditsGrant != 50 {
		t.Errorf("DevCreditsGrant = %d, want 50", cfg.DevCreditsGrant)
	}
	if cfg.VendorTimeout != 5*time.Second {
		t.Errorf("VendorTimeout = %v, want 5s", cfg.VendorTimeout)
	}
}

func TestLoadConfigRejectsUnknownEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "qa")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error for unknown APP_ENV")
	}
}

func TestLoadConfigRejectsMalformedDatabaseURL(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "not a url")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error for malformed DATABASE_URL")
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("VENDOR_TIMEOUT_SECONDS", "lots")
	if got := getEnvInt("VENDOR_TIMEOUT_SECONDS", 30); got != 30 {
		t.Errorf("getEnvInt = %d, want fallback 30", got)
	}
}
