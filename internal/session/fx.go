package session

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/descomplaca/internal/automation"
	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/smallbiznis/descomplaca/internal/config"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type storeParams struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Redis   *redis.Client                  `optional:"true"`
	Metrics *obsmetrics.MarketplaceMetrics `optional:"true"`
}

func newStore(p storeParams) Store {
	if p.Redis != nil {
		p.Log.Info("automation sessions stored in redis")
		return NewRedisStore(p.Redis, p.Cfg.Session.IdleTimeout, p.Clock)
	}

	store := NewMemoryStore(p.Cfg.Session.IdleTimeout, p.Cfg.Session.SweepInterval, p.Log,
		WithClock(p.Clock), WithMetrics(p.Metrics))
	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			store.Start()
			return nil
		},
		OnStop: store.Stop,
	})
	return store
}

var Module = fx.Module("session",
	fx.Provide(newStore),
	fx.Provide(func(store Store, automator automation.Automator, c clock.Clock, log *zap.Logger) *Service {
		return NewService(store, automator, c, log)
	}),
)
