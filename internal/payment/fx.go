package payment

import (
	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/payment/adapters"
	"github.com/smallbiznis/descomplaca/internal/payment/domain"
	"github.com/smallbiznis/descomplaca/internal/payment/repository"
	paymentservice "github.com/smallbiznis/descomplaca/internal/payment/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config, log *zap.Logger) (domain.Gateway, *adapters.Registry, error) {
		return adapters.Build(cfg, log.Named("payment.adapters"))
	}),
	fx.Provide(paymentservice.NewService),
)
