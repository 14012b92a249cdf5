package domain

import (
	"context"
	"errors"
)

type SubmitProposalRequest struct {
	OrderID       string `json:"order_id"`
	DispatcherID  string `json:"dispatcher_id"`
	FeeValue      int64  `json:"fee_value"`
	TaxValue      int64  `json:"tax_value"`
	EstimatedDays int    `json:"estimated_days"`
	Description   string `json:"description"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitProposalRequest) (Proposal, error)
	ListForOrder(ctx context.Context, orderID string) ([]Proposal, error)
}

var (
	ErrInvalidOrderID       = errors.New("invalid_order_id")
	ErrInvalidDispatcherID  = errors.New("invalid_dispatcher_id")
	ErrDispatcherNotFound   = errors.New("dispatcher_not_found")
	ErrInvalidFee           = errors.New("invalid_fee_value")
	ErrInvalidTax           = errors.New("invalid_tax_value")
	ErrInvalidEstimatedDays = errors.New("invalid_estimated_days")
	ErrOrderNotOpen         = errors.New("order_not_open_for_proposals")
	ErrNotFound             = errors.New("proposal_not_found")
)
