package config_test

import (
	"testing"
	"time"

	"github.com/akozlov/bookkeep/internal/domain"
	"github.com/akozlov/bookkeep/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.RedisURL != "" {
		t.Fatalf("expected redis URL default to be empty, got %q", cfg.RedisURL)
	}

	if cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected default currency USD, got %s", cfg.DefaultCurrency)
	}

	if cfg.OutboxInterval != 5*time.Second {
		t.Fatalf("expected default outbox interval 5s, got %s", cfg.OutboxInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("DEFAULT_CURRENCY", "EUR")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.DefaultCurrency != "EUR" {
		t.Fatalf("expected currency override, got %s", cfg.DefaultCurrency)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.OutboxBatchSize != 50 {
		t.Fatalf("expected outbox batch size override, got %d", cfg.OutboxBatchSize)
	}
}

func TestLoadRejectsUnknownDefaultCurrency(t *testing.T) {
	t.Setenv("DEFAULT_CURRENCY", "NOPE")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unknown default currency")
	}
}

func TestFormattingAndParseOptions(t *testing.T) {
	t.Setenv("MONEY_SEPARATOR", ".")
	t.Setenv("MONEY_DELIMITER", ",")
	t.Setenv("MONEY_SYMBOL_ON_RIGHT", "true")
	t.Setenv("MONEY_SYMBOL_SPACE", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	m := domain.MustParseMoney("1.234,56", "EUR", cfg.ParseOptions())
	if m.Amount() != 123456 {
		t.Fatalf("expected 123456 minor units, got %d", m.Amount())
	}

	if got := m.Format(cfg.Formatting()); got != "1.234,56 €" {
		t.Fatalf("expected formatted output %q, got %q", "1.234,56 €", got)
	}
}
