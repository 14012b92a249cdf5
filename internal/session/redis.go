package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/descomplaca/internal/clock"
)

const keySession = "automation:session:%s"

// RedisStore shares sessions across instances. Redis key expiry does the
// sweeping, so no goroutine is needed.
type RedisStore struct {
	client *redis.Client
	clock  clock.Clock
	idle   time.Duration
}

func NewRedisStore(client *redis.Client, idle time.Duration, c clock.Clock) *RedisStore {
	if c == nil {
		c = clock.SystemClock{}
	}
	return &RedisStore{client: client, clock: c, idle: idle}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf(keySession, id)
}

func (s *RedisStore) save(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.ID), raw, s.idle).Err()
}

func (s *RedisStore) Create(ctx context.Context) (Session, error) {
	now := s.clock.Now()
	sess := Session{ID: uuid.NewString(), CreatedAt: now, LastAccess: now, Data: map[string]any{}}
	if err := s.save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, ErrNotFound
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, err
	}
	sess.LastAccess = s.clock.Now()
	if err := s.save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, id, key string, value any) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Data == nil {
		sess.Data = map[string]any{}
	}
	sess.Data[key] = value
	return s.save(ctx, sess)
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(strings.TrimSpace(id))).Err()
}

var _ Store = (*RedisStore)(nil)
