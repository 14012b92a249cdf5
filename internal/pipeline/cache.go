// Package pipeline keeps the last plate-portal listing fetched by the bot.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/clock"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"go.uber.org/zap"
)

type Snapshot struct {
	Data        []automation.PipelineRow `json:"data"`
	LastUpdated *time.Time               `json:"last_updated"`
}

// SnapshotStore persists the latest snapshot so other instances and restarts
// see it.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, bool, error)
}

type Cache struct {
	automator automation.Automator
	store     SnapshotStore
	clock     clock.Clock
	log       *zap.Logger
	metrics   *obsmetrics.MarketplaceMetrics

	mu      sync.RWMutex
	current Snapshot

	refreshMu sync.Mutex
}

type Params struct {
	Automator automation.Automator
	Store     SnapshotStore
	Clock     clock.Clock
	Log       *zap.Logger
	Metrics   *obsmetrics.MarketplaceMetrics
}

func NewCache(p Params) *Cache {
	c := &Cache{
		automator: p.Automator,
		store:     p.Store,
		clock:     p.Clock,
		log:       p.Log,
		metrics:   p.Metrics,
		current:   Snapshot{Data: []automation.PipelineRow{}},
	}
	if c.clock == nil {
		c.clock = clock.SystemClock{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("pipeline.cache")
	return c
}

// Get returns the cached snapshot. Before the first refresh on this instance
// it falls back to the persisted one, if any.
func (c *Cache) Get(ctx context.Context) Snapshot {
	c.mu.RLock()
	snap := c.current
	c.mu.RUnlock()
	if snap.LastUpdated != nil || c.store == nil {
		return snap
	}

	stored, ok, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn("load pipeline snapshot failed", zap.Error(err))
		return snap
	}
	if !ok {
		return snap
	}
	c.mu.Lock()
	if c.current.LastUpdated == nil {
		c.current = stored
	}
	snap = c.current
	c.mu.Unlock()
	return snap
}

// Refresh fetches the listing and replaces the snapshot. A failed fetch
// leaves the previous snapshot untouched. Concurrent refreshes are serialized.
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	rows, err := c.automator.FetchExternalPipeline(ctx)
	if err != nil {
		c.log.Error("pipeline refresh failed", zap.Error(err))
		return Snapshot{}, err
	}
	if rows == nil {
		rows = []automation.PipelineRow{}
	}
	now := c.clock.Now()
	snap := Snapshot{Data: rows, LastUpdated: &now}

	c.mu.Lock()
	c.current = snap
	c.mu.Unlock()
	c.metrics.SetPipelineRows(len(rows))

	if c.store != nil {
		if err := c.store.Save(ctx, snap); err != nil {
			c.log.Warn("persist pipeline snapshot failed", zap.Error(err))
		}
	}
	c.log.Info("pipeline refreshed", zap.Int("rows", len(rows)))
	return snap, nil
}
