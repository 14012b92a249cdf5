package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

const keySnapshot = "automation:pipeline:snapshot"

// RedisSnapshotStore keeps the snapshot as snappy-compressed JSON.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: keySnapshot}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap Snapshot) error {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, 0).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context) (Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return snappy.Encode(nil, payload), nil
}

func decodeSnapshot(raw []byte) (Snapshot, error) {
	payload, err := snappy.Decode(nil, raw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)
