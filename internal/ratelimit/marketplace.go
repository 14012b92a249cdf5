package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/descomplaca/internal/config"
)

const (
	keyChatOrder    = "chat:order:%d"
	keyCheckoutLock = "checkout:lock:proposal:%d"

	defaultCheckoutLockTTL = 30 * time.Second
)

// MarketplaceLimiter throttles chat per order and serializes checkout per
// proposal. A nil limiter (no Redis) allows everything.
type MarketplaceLimiter struct {
	bucket *TokenBucket
	locker *Locker

	chatRate  float64
	chatBurst int
	lockTTL   time.Duration
}

func NewMarketplaceLimiter(cfg config.Config, client *redis.Client) *MarketplaceLimiter {
	if client == nil {
		return nil
	}
	lockTTL := cfg.Payment.Timeout * 3
	if lockTTL <= 0 {
		lockTTL = defaultCheckoutLockTTL
	}
	return &MarketplaceLimiter{
		bucket:    NewTokenBucket(client),
		locker:    NewLocker(client),
		chatRate:  cfg.Chat.RatePerSecond,
		chatBurst: cfg.Chat.Burst,
		lockTTL:   lockTTL,
	}
}

func (l *MarketplaceLimiter) Enabled() bool {
	return l != nil
}

// AllowChat reports whether another message may be posted on the order.
func (l *MarketplaceLimiter) AllowChat(ctx context.Context, orderID int64) (bool, error) {
	if !l.Enabled() || l.chatRate <= 0 || l.chatBurst <= 0 {
		return true, nil
	}
	res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyChatOrder, orderID), l.chatRate, l.chatBurst)
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// LockCheckout takes the per-proposal checkout lock. Without Redis it always succeeds.
func (l *MarketplaceLimiter) LockCheckout(ctx context.Context, proposalID int64) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, fmt.Sprintf(keyCheckoutLock, proposalID), l.lockTTL)
}

func (l *MarketplaceLimiter) ReleaseCheckout(ctx context.Context, proposalID int64, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, fmt.Sprintf(keyCheckoutLock, proposalID), token)
}
