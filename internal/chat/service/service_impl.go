package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/chat/domain"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	"github.com/smallbiznis/descomplaca/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	OrderRepo orderdomain.Repository
	Limiter   *ratelimit.MarketplaceLimiter `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	orderRepo orderdomain.Repository
	limiter   *ratelimit.MarketplaceLimiter
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("chat.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		limiter:   p.Limiter,
	}
}

// Send appends a message to the order conversation. Content is stored as
// written; contact details are not filtered here.
func (s *Service) Send(ctx context.Context, req domain.SendMessageRequest) (domain.Message, error) {
	orderID, err := parseOrderID(req.OrderID)
	if err != nil {
		return domain.Message{}, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return domain.Message{}, domain.ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > domain.MaxContentLength {
		return domain.Message{}, domain.ErrContentTooLong
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return domain.Message{}, err
	}
	if order == nil {
		return domain.Message{}, orderdomain.ErrNotFound
	}

	allowed, err := s.limiter.AllowChat(ctx, int64(orderID))
	if err != nil {
		// Redis trouble must not take chat down.
		s.log.Warn("chat limiter unavailable", zap.String("order_id", orderID.String()), zap.Error(err))
	} else if !allowed {
		return domain.Message{}, domain.ErrRateLimited
	}

	msg := domain.Message{
		ID:               s.genID.Generate(),
		OrderID:          orderID,
		Content:          content,
		IsFromDispatcher: req.IsFromDispatcher,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, orderID string) ([]domain.Message, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListByOrder(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func parseOrderID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidOrderID
	}
	return id, nil
}
