package session

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMemoryStoreTouchExtendsIdleDeadline(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(5*time.Minute, 0, zap.NewNop(), WithClock(fc))
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	fc.Advance(4 * time.Minute)
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, fc.Now(), got.LastAccess)

	fc.Advance(4 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	require.NoError(t, err, "touch should push expiry")

	fc.Advance(6 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateAndClear(t *testing.T) {
	store := NewMemoryStore(time.Minute, 0, zap.NewNop())
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, sess.ID, "step", "scraped"))
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "scraped", got.Data["step"])

	require.NoError(t, store.Clear(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Update(ctx, "missing", "k", 1), ErrNotFound)
}

func TestMemoryStoreSweeperReclaimsIdleSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	fc := clock.NewFakeClock(time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(300*time.Second, 10*time.Millisecond, zap.NewNop(), WithClock(fc))
	ctx := context.Background()

	idle, err := store.Create(ctx)
	require.NoError(t, err)
	fc.Advance(200 * time.Second)
	fresh, err := store.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.Start()
	store.Start()

	fc.Advance(101 * time.Second)
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)

	_, err = store.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, store.Stop(stopCtx))
	require.NoError(t, store.Stop(stopCtx))
}

func TestMemoryStoreSweepWithoutSweeper(t *testing.T) {
	fc := clock.NewFakeClock(time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(time.Minute, 0, zap.NewNop(), WithClock(fc))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx)
		require.NoError(t, err)
	}
	store.Start()

	fc.Advance(2 * time.Minute)
	assert.Equal(t, 3, store.Sweep())
	assert.Equal(t, 0, store.Len())
	assert.NoError(t, store.Stop(ctx))
}
