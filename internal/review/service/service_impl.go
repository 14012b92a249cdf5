package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	proposaldomain "github.com/smallbiznis/descomplaca/internal/proposal/domain"
	"github.com/smallbiznis/descomplaca/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	OrderRepo    orderdomain.Repository
	ProposalRepo proposaldomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	orderRepo    orderdomain.Repository
	proposalRepo proposaldomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("review.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		orderRepo:    p.OrderRepo,
		proposalRepo: p.ProposalRepo,
	}
}

// Create reviews a finished order. The reviewed dispatcher is whoever owns
// the accepted proposal, never a caller-supplied id.
func (s *Service) Create(ctx context.Context, req domain.CreateReviewRequest) (domain.Review, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil || orderID == 0 {
		return domain.Review{}, domain.ErrInvalidOrderID
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return domain.Review{}, domain.ErrInvalidRating
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return domain.Review{}, err
	}
	if order == nil {
		return domain.Review{}, orderdomain.ErrNotFound
	}
	if order.Status != orderdomain.StatusFinished {
		return domain.Review{}, domain.ErrOrderNotFinished
	}

	accepted, err := s.proposalRepo.FindAccepted(ctx, s.db, orderID)
	if err != nil {
		return domain.Review{}, err
	}
	if accepted == nil {
		return domain.Review{}, domain.ErrNoAcceptedProposal
	}

	review := domain.Review{
		ID:           s.genID.Generate(),
		OrderID:      orderID,
		DispatcherID: accepted.DispatcherID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &review); err != nil {
		return domain.Review{}, err
	}

	s.log.Info("review created",
		zap.String("order_id", orderID.String()),
		zap.String("dispatcher_id", review.DispatcherID.String()),
		zap.Int("rating", review.Rating),
	)
	return review, nil
}

func (s *Service) ListByDispatcher(ctx context.Context, dispatcherID string) (domain.DispatcherReviews, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(dispatcherID))
	if err != nil || id == 0 {
		return domain.DispatcherReviews{}, domain.ErrInvalidDispatcherID
	}
	reviews, err := s.repo.ListByDispatcher(ctx, s.db, id)
	if err != nil {
		return domain.DispatcherReviews{}, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	out := domain.DispatcherReviews{DispatcherID: id, Count: len(reviews), Reviews: reviews}
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		// one decimal place, as shown on the dispatcher profile
		out.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return out, nil
}
