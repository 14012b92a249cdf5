package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/events"
	"github.com/smallbiznis/descomplaca/internal/order/domain"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"github.com/smallbiznis/descomplaca/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Old Brazilian plates (ABC1234) and Mercosul plates (ABC1D23).
var platePattern = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	UserRepo  userdomain.Repository
	Publisher events.Publisher
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	userRepo  userdomain.Repository
	publisher events.Publisher
}

func New(p Params) domain.Service {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		userRepo:  p.UserRepo,
		publisher: publisher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return domain.Order{}, domain.ErrInvalidOwner
	}

	plate := NormalizePlate(req.VehiclePlate)
	if !platePattern.MatchString(plate) {
		return domain.Order{}, domain.ErrInvalidPlate
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		return domain.Order{}, domain.ErrInvalidServiceType
	}

	state := strings.ToUpper(strings.TrimSpace(req.State))
	if state != "" && len(state) != 2 {
		return domain.Order{}, domain.ErrInvalidState
	}

	owner, err := s.userRepo.FindByID(ctx, s.db, ownerID)
	if err != nil {
		return domain.Order{}, err
	}
	if owner == nil {
		return domain.Order{}, domain.ErrOwnerNotFound
	}

	var renavam *string
	if req.VehicleRenavam != nil {
		if v := strings.TrimSpace(*req.VehicleRenavam); v != "" {
			renavam = &v
		}
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:             s.genID.Generate(),
		OwnerID:        ownerID,
		Status:         domain.StatusOpen,
		VehiclePlate:   plate,
		VehicleRenavam: renavam,
		ServiceType:    serviceType,
		Description:    strings.TrimSpace(req.Description),
		City:           strings.TrimSpace(req.City),
		State:          state,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		return domain.Order{}, err
	}

	s.publisher.Publish(ctx, events.EventOrderCreated, int64(order.ID), map[string]any{
		"order_id":     order.ID.String(),
		"service_type": order.ServiceType,
		"city":         order.City,
		"state":        order.State,
	})
	return order, nil
}

func (s *Service) ListOpen(ctx context.Context, req domain.ListOpenRequest) (domain.ListOpenResponse, error) {
	var cursor *pagination.Cursor
	if token := strings.TrimSpace(req.PageToken); token != "" {
		decoded, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListOpenResponse{}, err
		}
		cursor = decoded
	}

	pageSize := pagination.NormalizeSize(req.PageSize)
	filter := domain.ListOpenFilter{
		City:  strings.TrimSpace(req.City),
		State: strings.ToUpper(strings.TrimSpace(req.State)),
	}

	items, err := s.repo.ListOpen(ctx, s.db, filter, cursor, pageSize+1)
	if err != nil {
		return domain.ListOpenResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(order *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        order.ID.String(),
			CreatedAt: order.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item != nil {
			orders = append(orders, *item)
		}
	}
	resp := domain.ListOpenResponse{Orders: orders}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

// UpdateStatus applies a fulfillment update. Any enumerated status is
// accepted from any origin except PAID, which only reconciliation may set.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	orderID, err := parseID(req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	status, ok := domain.ParseStatus(strings.TrimSpace(req.Status))
	if !ok {
		return domain.Order{}, domain.ErrInvalidStatus
	}
	if status.Reserved() {
		return domain.Order{}, domain.ErrStatusReserved
	}

	var updated domain.Order
	var previous domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		previous = order.Status

		now := time.Now().UTC()
		if err := s.repo.SetStatus(ctx, tx, orderID, status, now); err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		updated = *order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order status updated",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)
	s.publisher.Publish(ctx, events.EventOrderStatusChanged, int64(updated.ID), map[string]any{
		"order_id": updated.ID.String(),
		"from":     previous,
		"to":       status,
	})
	return updated, nil
}

// NormalizePlate uppercases and strips separators ("abc-1d23" -> "ABC1D23").
func NormalizePlate(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	return strings.NewReplacer("-", "", " ", "").Replace(value)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
