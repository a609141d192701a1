package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr() != "0.0.0.0:8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr())
	}
	if cfg.Locale.Default != "en" || len(cfg.Locale.Supported) != 4 {
		t.Fatalf("unexpected locale defaults: %+v", cfg.Locale)
	}
	if cfg.Payments.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("expected 24h idempotency ttl, got %s", cfg.Payments.IdempotencyTTL)
	}
}

func TestLoadPrefixedSections(t *testing.T) {
	t.Setenv("PAYPAL_CLIENT_ID", "pp-client")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("LOCALE_SUPPORTED", "en,fr")
	t.Setenv("RECONCILER_STALE_AGE", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Paypal.ClientID != "pp-client" {
		t.Fatalf("expected paypal client id, got %q", cfg.Paypal.ClientID)
	}
	if cfg.Stripe.SecretKey != "sk_test_123" {
		t.Fatalf("expected stripe key, got %q", cfg.Stripe.SecretKey)
	}
	if strings.Join(cfg.Locale.Supported, ",") != "en,fr" {
		t.Fatalf("unexpected supported locales %v", cfg.Locale.Supported)
	}
	if cfg.Reconciler.StaleAge != 30*time.Minute {
		t.Fatalf("unexpected stale age %s", cfg.Reconciler.StaleAge)
	}
}

func TestSecureCookies(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SecureCookies() {
		t.Fatal("development defaults must not force secure cookies")
	}
	if cfg.Crypto.CallbackPath != "/api/v1/webhooks/crypto" {
		t.Fatalf("unexpected crypto callback path %q", cfg.Crypto.CallbackPath)
	}

	t.Setenv("ENVIRONMENT", "production")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Environment.IsProduction() || !cfg.SecureCookies() {
		t.Fatalf("production must use secure cookies, got %+v", cfg.Environment)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("REDIS_DB", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
