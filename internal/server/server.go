package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	chatdomain "github.com/smallbiznis/descomplaca/internal/chat/domain"
	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/document"
	"github.com/smallbiznis/descomplaca/internal/observability"
	obsmiddleware "github.com/smallbiznis/descomplaca/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	obstracing "github.com/smallbiznis/descomplaca/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	"github.com/smallbiznis/descomplaca/internal/pipeline"
	proposaldomain "github.com/smallbiznis/descomplaca/internal/proposal/domain"
	reviewdomain "github.com/smallbiznis/descomplaca/internal/review/domain"
	"github.com/smallbiznis/descomplaca/internal/session"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

// maxWebhookBody bounds provider notification payloads.
const maxWebhookBody = 1 << 20

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type documentUploader interface {
	Upload(ctx context.Context, orderID, filename string, r io.Reader) (document.StoredFile, error)
}

type sessionRunner interface {
	Start(ctx context.Context) (session.Session, error)
	Clear(ctx context.Context, id string) error
	Process(ctx context.Context, id string) (session.ProcessResult, error)
	StartGovBRLogin(ctx context.Context) error
}

type pipelineCache interface {
	Get(ctx context.Context) pipeline.Snapshot
	Refresh(ctx context.Context) (pipeline.Snapshot, error)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	userSvc     userdomain.Service
	orderSvc    orderdomain.Service
	proposalSvc proposaldomain.Service
	paymentSvc  paymentdomain.Service
	reviewSvc   reviewdomain.Service
	chatSvc     chatdomain.Service
	documents   documentUploader
	sessions    sessionRunner
	pipeline    pipelineCache
	catalog     *config.CatalogHolder
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	UserSvc     userdomain.Service
	OrderSvc    orderdomain.Service
	ProposalSvc proposaldomain.Service
	PaymentSvc  paymentdomain.Service
	ReviewSvc   reviewdomain.Service
	ChatSvc     chatdomain.Service
	Documents   *document.Service
	Sessions    *session.Service
	Pipeline    *pipeline.Cache
	Catalog     *config.CatalogHolder
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		userSvc:     p.UserSvc,
		orderSvc:    p.OrderSvc,
		proposalSvc: p.ProposalSvc,
		paymentSvc:  p.PaymentSvc,
		reviewSvc:   p.ReviewSvc,
		chatSvc:     p.ChatSvc,
		documents:   p.Documents,
		sessions:    p.Sessions,
		pipeline:    p.Pipeline,
		catalog:     p.Catalog,
	}

	s.registerAPIRoutes()
	s.registerFallback()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Users --------
	api.POST("/users", s.CreateUser)
	api.GET("/users/:id", s.GetUserByID)
	api.POST("/users/:id/onboard", s.OnboardDispatcher)

	// -------- Orders --------
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOpenOrders)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PUT("/orders/:id/status", s.UpdateOrderStatus)

	// -------- Proposals --------
	api.POST("/proposals", s.SubmitProposal)
	api.GET("/proposals/order/:order_id", s.ListProposalsForOrder)

	// -------- Payments --------
	api.POST("/payments/checkout/:proposal_id", s.CreateCheckout)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)
	api.POST("/payments/webhook/asaas", s.HandleAsaasWebhook)

	// -------- Reviews --------
	api.POST("/reviews", s.CreateReview)
	api.GET("/reviews/dispatcher/:dispatcher_id", s.ListDispatcherReviews)

	// -------- Chat --------
	api.GET("/chat/:order_id", s.ListChatMessages)
	api.POST("/chat", s.SendChatMessage)

	// -------- Documents --------
	api.POST("/documents/upload/:order_id", s.UploadDocument)

	// -------- Catalog --------
	api.GET("/services", s.ListServices)
	api.GET("/services/:id", s.GetService)

	// -------- Automation --------
	api.POST("/sessions", s.StartSession)
	api.DELETE("/sessions/:id", s.ClearSession)
	api.POST("/sessions/:id/process", s.ProcessSession)
	api.POST("/login/govbr/start", s.StartGovBRLogin)
	api.POST("/pipeline/refresh", s.RefreshPipeline)
	api.GET("/pipeline/data", s.GetPipelineData)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
