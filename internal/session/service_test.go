package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAutomator struct {
	user      automation.UserData
	scrapeErr error
	submitted []automation.UserData
	submitOK  bool
	navigated int
}

func (f *fakeAutomator) NavigateGovBR(context.Context) error {
	f.navigated++
	return nil
}

func (f *fakeAutomator) ScrapeUserData(context.Context) (automation.UserData, error) {
	return f.user, f.scrapeErr
}

func (f *fakeAutomator) SubmitExternalForm(_ context.Context, data automation.UserData) (bool, error) {
	f.submitted = append(f.submitted, data)
	return f.submitOK, nil
}

func (f *fakeAutomator) FetchExternalPipeline(context.Context) ([]automation.PipelineRow, error) {
	return nil, nil
}

func (f *fakeAutomator) Close() error { return nil }

func newTestService(t *testing.T, auto *fakeAutomator) (*Service, *MemoryStore) {
	t.Helper()
	fc := clock.NewFakeClock(time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore(5*time.Minute, 0, zap.NewNop(), WithClock(fc))
	return NewService(store, auto, fc, zap.NewNop()), store
}

func TestProcessScrapesSubmitsAndClears(t *testing.T) {
	auto := &fakeAutomator{
		user:     automation.UserData{Name: "Maria Souza", TaxID: "123.456.789-00"},
		submitOK: true,
	}
	svc, store := newTestService(t, auto)
	ctx := context.Background()

	sess, err := svc.Start(ctx)
	require.NoError(t, err)

	res, err := svc.Process(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Regexp(t, `^DET-2025-[0-9A-F]{8}$`, res.Protocol)

	require.Len(t, auto.submitted, 1)
	assert.Equal(t, "Maria Souza", auto.submitted[0].Name)
	assert.Equal(t, 0, store.Len())
}

func TestProcessUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &fakeAutomator{submitOK: true})

	_, err := svc.Process(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessKeepsSessionOnFailure(t *testing.T) {
	t.Run("scrape fails", func(t *testing.T) {
		auto := &fakeAutomator{scrapeErr: automation.ErrUserDataUnavailable}
		svc, store := newTestService(t, auto)
		sess, err := svc.Start(context.Background())
		require.NoError(t, err)

		_, err = svc.Process(context.Background(), sess.ID)
		assert.True(t, errors.Is(err, automation.ErrUserDataUnavailable))
		assert.Equal(t, 1, store.Len())
		assert.Empty(t, auto.submitted)
	})

	t.Run("form rejected", func(t *testing.T) {
		auto := &fakeAutomator{user: automation.UserData{Name: "João"}}
		svc, store := newTestService(t, auto)
		sess, err := svc.Start(context.Background())
		require.NoError(t, err)

		_, err = svc.Process(context.Background(), sess.ID)
		assert.ErrorIs(t, err, automation.ErrNavigation)
		got, err := store.Get(context.Background(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, auto.user, got.Data[keyUserData])
	})
}

func TestClearAndGovBRLogin(t *testing.T) {
	auto := &fakeAutomator{}
	svc, store := newTestService(t, auto)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Clear(ctx, " "), ErrInvalidID)

	sess, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, sess.ID))
	assert.Equal(t, 0, store.Len())

	require.NoError(t, svc.StartGovBRLogin(ctx))
	assert.Equal(t, 1, auto.navigated)
}
