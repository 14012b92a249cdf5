package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/descomplaca/internal/cache"
	"github.com/smallbiznis/descomplaca/internal/clock"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"go.uber.org/zap"
)

// MemoryStore holds sessions in process. A background sweeper reclaims idle
// sessions every interval; expired entries are already invisible to Get.
type MemoryStore struct {
	items    *cache.TTLCache[string, Session]
	clock    clock.Clock
	idle     time.Duration
	interval time.Duration
	log      *zap.Logger
	metrics  *obsmetrics.MarketplaceMetrics

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

type MemoryOption func(*MemoryStore)

func WithClock(c clock.Clock) MemoryOption {
	return func(s *MemoryStore) { s.clock = c }
}

func WithMetrics(m *obsmetrics.MarketplaceMetrics) MemoryOption {
	return func(s *MemoryStore) { s.metrics = m }
}

func NewMemoryStore(idle, interval time.Duration, log *zap.Logger, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		clock:    clock.SystemClock{},
		idle:     idle,
		interval: interval,
		log:      log.Named("session.memory"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = cache.NewTTLCacheWithClock[string, Session](s.clock)
	return s
}

func (s *MemoryStore) Create(_ context.Context) (Session, error) {
	now := s.clock.Now()
	sess := Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LastAccess: now,
		Data:       map[string]any{},
	}
	s.items.Set(sess.ID, sess, s.idle)
	return sess, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	sess, ok := s.items.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	sess.LastAccess = s.clock.Now()
	s.items.Set(id, sess, s.idle)
	return sess, nil
}

func (s *MemoryStore) Update(ctx context.Context, id, key string, value any) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	data := make(map[string]any, len(sess.Data)+1)
	for k, v := range sess.Data {
		data[k] = v
	}
	data[key] = value
	sess.Data = data
	s.items.Set(sess.ID, sess, s.idle)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.items.Delete(strings.TrimSpace(id))
	return nil
}

// Sweep drops idle sessions now and returns how many went.
func (s *MemoryStore) Sweep() int {
	removed := s.items.Sweep()
	if removed > 0 {
		s.metrics.AddSessionsSwept(removed)
		s.log.Debug("idle sessions swept", zap.Int("removed", removed))
	}
	return removed
}

func (s *MemoryStore) Len() int {
	return s.items.Len()
}

// Start launches the sweeper. It is a no-op when already running.
func (s *MemoryStore) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || s.interval <= 0 {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

func (s *MemoryStore) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Stop halts the sweeper and waits for it to exit.
func (s *MemoryStore) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Store = (*MemoryStore)(nil)
