package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents application configuration loaded from environment
// variables. DatabaseURL is optional: without it the service falls back to
// the JSON snapshot store and the in-memory development ledger.
type Config struct {
	AppEnv           string `validate:"required,oneof=development staging production"`
	Port             string `validate:"required"`
	DatabaseURL      string `validate:"omitempty,url"`
	SnapshotPath     string `validate:"required"`
	VendorBaseURL    string `validate:"omitempty,url"`
	VendorBillingURL string `validate:"omitempty,url"`
	VendorTimeout    time.Duration
	DevCreditsGrant  int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables, applies
// defaults, and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SnapshotPath:     getEnv("TASKS_SNAPSHOT_PATH", "./data/tasks.json"),
		VendorBaseURL:    os.Getenv("VENDOR_BASE_URL"),
		VendorBillingURL: os.Getenv("VENDOR_BILLING_URL"),
		VendorTimeout:    time.Second * time.Duration(getEnvInt("VENDOR_TIMEOUT_SECONDS", 30)),
		DevCreditsGrant:  getEnvInt("DEV_CREDITS_GRANT", 500),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
