package automation

import (
	"context"

	"github.com/smallbiznis/descomplaca/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("automation",
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Automator {
		a := NewRodAutomator(cfg.Automation, log)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return a.Close() },
		})
		return a
	}),
)
