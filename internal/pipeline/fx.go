package pipeline

import (
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/clock"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleParams struct {
	fx.In

	Automator automation.Automator
	Clock     clock.Clock
	Log       *zap.Logger
	Redis     *redis.Client                  `optional:"true"`
	Metrics   *obsmetrics.MarketplaceMetrics `optional:"true"`
}

var Module = fx.Module("pipeline",
	fx.Provide(func(p moduleParams) *Cache {
		var store SnapshotStore
		if p.Redis != nil {
			store = NewRedisSnapshotStore(p.Redis)
		}
		return NewCache(Params{
			Automator: p.Automator,
			Store:     store,
			Clock:     p.Clock,
			Log:       p.Log,
			Metrics:   p.Metrics,
		})
	}),
)
