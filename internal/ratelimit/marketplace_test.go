package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/descomplaca/internal/config"
)

func TestNilLimiterAllowsEverything(t *testing.T) {
	l := NewMarketplaceLimiter(config.Config{}, nil)
	if l.Enabled() {
		t.Fatalf("expected limiter without redis to be disabled")
	}

	ok, err := l.AllowChat(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("expected chat allowed, got %v %v", ok, err)
	}
	token, ok, err := l.LockCheckout(context.Background(), 1)
	if err != nil || !ok || token != "" {
		t.Fatalf("expected lock to pass through, got %q %v %v", token, ok, err)
	}
	if err := l.ReleaseCheckout(context.Background(), 1, token); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestDefaultBucketTTL(t *testing.T) {
	if got := defaultBucketTTL(1, 5); got != 10*time.Second {
		t.Fatalf("expected 10s, got %s", got)
	}
	if got := defaultBucketTTL(0, 5); got != time.Second {
		t.Fatalf("expected 1s fallback, got %s", got)
	}
}

func TestCastHelpers(t *testing.T) {
	if castToFloat("2.5") != 2.5 {
		t.Fatalf("expected string tokens to parse")
	}
	if castToInt(int64(1)) != 1 || castToInt("x") != 0 {
		t.Fatalf("unexpected int cast")
	}
}
