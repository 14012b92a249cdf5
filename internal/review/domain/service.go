package domain

import (
	"context"
	"errors"
)

type CreateReviewRequest struct {
	OrderID string `json:"order_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Service interface {
	Create(ctx context.Context, req CreateReviewRequest) (Review, error)
	ListByDispatcher(ctx context.Context, dispatcherID string) (DispatcherReviews, error)
}

var (
	ErrInvalidOrderID      = errors.New("invalid_order_id")
	ErrInvalidDispatcherID = errors.New("invalid_dispatcher_id")
	ErrInvalidRating       = errors.New("invalid_rating")
	ErrOrderNotFinished    = errors.New("order_not_finished")
	ErrNoAcceptedProposal  = errors.New("order_has_no_accepted_proposal")
)
