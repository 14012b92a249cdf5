package document

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	OrderRepo orderdomain.Repository
	Storage   Storage
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	orderRepo orderdomain.Repository
	storage   Storage
}

func NewService(p Params) *Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("document.service"),
		orderRepo: p.OrderRepo,
		storage:   p.Storage,
	}
}

// Upload stores a document for an existing order.
func (s *Service) Upload(ctx context.Context, orderID, filename string, r io.Reader) (StoredFile, error) {
	id, err := snowflake.ParseString(orderID)
	if err != nil || id == 0 {
		return StoredFile{}, ErrInvalidOrderID
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return StoredFile{}, err
	}
	if order == nil {
		return StoredFile{}, orderdomain.ErrNotFound
	}

	stored, err := s.storage.Save(ctx, id.String(), filename, r)
	if err != nil {
		return StoredFile{}, err
	}
	s.log.Info("document uploaded",
		zap.String("order_id", id.String()),
		zap.String("filename", stored.Filename),
		zap.Int64("size", stored.Size),
	)
	return stored, nil
}
