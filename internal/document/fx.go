package document

import (
	"github.com/smallbiznis/descomplaca/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("document",
	fx.Provide(func(cfg config.Config) Storage { return NewLocalStorage(cfg.UploadDir) }),
	fx.Provide(NewService),
)
