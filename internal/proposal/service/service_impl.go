package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/contentfilter"
	"github.com/smallbiznis/descomplaca/internal/events"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	"github.com/smallbiznis/descomplaca/internal/proposal/domain"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	OrderRepo  orderdomain.Repository
	UserRepo   userdomain.Repository
	Publisher  events.Publisher
	Metrics    *obsmetrics.MarketplaceMetrics `optional:"true"`
	ObsMetrics *obsmetrics.Metrics            `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	orderRepo  orderdomain.Repository
	userRepo   userdomain.Repository
	publisher  events.Publisher
	metrics    *obsmetrics.MarketplaceMetrics
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("proposal.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		orderRepo:  p.OrderRepo,
		userRepo:   p.UserRepo,
		publisher:  publisher,
		metrics:    p.Metrics,
		obsMetrics: p.ObsMetrics,
	}
}

// Submit records a proposal and moves its order from OPEN to
// PROPOSAL_RECEIVED. The conditional transition inside the transaction
// makes a racing second submission fail with ErrOrderNotOpen.
func (s *Service) Submit(ctx context.Context, req domain.SubmitProposalRequest) (domain.Proposal, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil || orderID == 0 {
		return domain.Proposal{}, domain.ErrInvalidOrderID
	}
	dispatcherID, err := snowflake.ParseString(strings.TrimSpace(req.DispatcherID))
	if err != nil || dispatcherID == 0 {
		return domain.Proposal{}, domain.ErrInvalidDispatcherID
	}
	if req.FeeValue < 0 {
		return domain.Proposal{}, domain.ErrInvalidFee
	}
	if req.TaxValue < 0 {
		return domain.Proposal{}, domain.ErrInvalidTax
	}
	if req.EstimatedDays < 0 {
		return domain.Proposal{}, domain.ErrInvalidEstimatedDays
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if order == nil {
		return domain.Proposal{}, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.StatusOpen {
		s.recordProposal(ctx, obsmetrics.OutcomeRejected)
		return domain.Proposal{}, domain.ErrOrderNotOpen
	}

	description, err := contentfilter.Validate(strings.TrimSpace(req.Description))
	if err != nil {
		s.recordProposal(ctx, obsmetrics.OutcomeRejected)
		s.log.Info("proposal blocked by content filter", zap.String("order_id", orderID.String()), zap.Error(err))
		return domain.Proposal{}, err
	}

	dispatcher, err := s.userRepo.FindByID(ctx, s.db, dispatcherID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if dispatcher == nil || dispatcher.Role != userdomain.RoleDispatcher {
		return domain.Proposal{}, domain.ErrDispatcherNotFound
	}

	now := time.Now().UTC()
	proposal := domain.Proposal{
		ID:            s.genID.Generate(),
		OrderID:       orderID,
		DispatcherID:  dispatcherID,
		FeeValue:      req.FeeValue,
		TaxValue:      req.TaxValue,
		TotalValue:    req.FeeValue + req.TaxValue,
		EstimatedDays: req.EstimatedDays,
		Description:   description,
		IsAccepted:    false,
		CreatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.orderRepo.TransitionIf(ctx, tx, orderID, orderdomain.StatusOpen, orderdomain.StatusProposalReceived, now)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrOrderNotOpen
		}
		return s.repo.Insert(ctx, tx, &proposal)
	})
	if err != nil {
		return domain.Proposal{}, err
	}

	s.recordProposal(ctx, "submitted")
	s.publisher.Publish(ctx, events.EventProposalSubmitted, int64(orderID), map[string]any{
		"order_id":    orderID.String(),
		"proposal_id": proposal.ID.String(),
		"total_value": proposal.TotalValue,
	})
	return proposal, nil
}

func (s *Service) ListForOrder(ctx context.Context, orderID string) ([]domain.Proposal, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidOrderID
	}
	proposals, err := s.repo.ListByOrder(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if proposals == nil {
		proposals = []domain.Proposal{}
	}
	return proposals, nil
}

func (s *Service) recordProposal(ctx context.Context, outcome string) {
	s.metrics.IncProposal(outcome)
	s.obsMetrics.RecordProposal(ctx, outcome)
}
