package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/smallbiznis/descomplaca/internal/config"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"github.com/smallbiznis/descomplaca/internal/pipeline"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobPipelineRefresh = "pipeline_refresh"

	pipelineRefreshTimeout = 5 * time.Minute
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Clock    clock.Clock
	Pipeline *pipeline.Cache
	Metrics  *obsmetrics.MarketplaceMetrics `optional:"true"`
}

var Module = fx.Module("scheduler",
	fx.Provide(Provide),
	fx.Invoke(NewScheduler),
)

// Provide builds the scheduler with the jobs the configuration enables.
func Provide(p Params) (*Scheduler, error) {
	s := New(p.Cfg.Scheduler.RunInterval, p.Clock, p.Log, p.Metrics)

	automation := p.Cfg.Automation
	switch {
	case p.Cfg.Scheduler.PipelineRefreshInterval <= 0:
	case automation.PortalUsername == "" || automation.PortalPassword == "":
		s.log.Info("pipeline refresh job disabled, portal credentials missing")
	default:
		cache := p.Pipeline
		if err := s.Register(Job{
			Name:     JobPipelineRefresh,
			Interval: p.Cfg.Scheduler.PipelineRefreshInterval,
			Timeout:  pipelineRefreshTimeout,
			Run: func(ctx context.Context) error {
				_, err := cache.Refresh(ctx)
				return err
			},
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func NewScheduler(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if !cfg.Scheduler.Enabled || len(sched.Jobs()) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sched.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
