package config

import (
	"testing"
	"time"
)

func TestLoadReadsPaymentSettings(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("COMMISSION_RATE", "0.15")
	t.Setenv("PAYMENT_TIMEOUT_SECONDS", "4")
	t.Setenv("ASAAS_API_URL", "https://api.asaas.com/v3/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	if !cfg.IsProduction() {
		t.Fatalf("expected production environment, got %q", cfg.Environment)
	}
	if cfg.Payment.CommissionRate != 0.15 {
		t.Fatalf("expected commission rate 0.15, got %v", cfg.Payment.CommissionRate)
	}
	if cfg.Payment.Timeout != 4*time.Second {
		t.Fatalf("expected timeout 4s, got %v", cfg.Payment.Timeout)
	}
	if cfg.Payment.AsaasAPIURL != "https://api.asaas.com/v3" {
		t.Fatalf("unexpected asaas url %q", cfg.Payment.AsaasAPIURL)
	}
	if len(cfg.Kafka.Brokers) != 2 || !cfg.Kafka.Enabled() {
		t.Fatalf("expected two brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("COMMISSION_RATE", "not-a-number")

	cfg := Load()

	if cfg.IsProduction() {
		t.Fatalf("expected non-production default")
	}
	if cfg.Payment.CommissionRate != 0.10 {
		t.Fatalf("expected default commission rate, got %v", cfg.Payment.CommissionRate)
	}
	if cfg.Session.IdleTimeout != 300*time.Second || cfg.Session.SweepInterval != 60*time.Second {
		t.Fatalf("unexpected session defaults %+v", cfg.Session)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.PipelineRefreshInterval != 0 {
		t.Fatalf("unexpected scheduler defaults %+v", cfg.Scheduler)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without REDIS_ADDR")
	}
}
