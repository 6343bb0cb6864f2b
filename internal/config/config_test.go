package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTP addr %s", cfg.HTTPAddr)
	}
	if cfg.CalculationCooldown != 5*time.Minute {
		t.Fatalf("unexpected cooldown %s", cfg.CalculationCooldown)
	}
}

func TestLoadRequiresDatabaseURLOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("INTERNAL_JOB_TOKEN", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for missing DATABASE_URL")
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for invalid APP_ENV")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CALCULATION_COOLDOWN", "five minutes")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for malformed CALCULATION_COOLDOWN")
	}
}

func TestLoadNotifierRequiresEndpoint(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("ADMIN_NOTIFIER_ENABLED", "true")
	t.Setenv("ADMIN_NOTIFIER_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for missing notifier endpoint")
	}
}
