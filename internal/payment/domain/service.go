package domain

import (
	"context"
	"net/http"
)

type Service interface {
	CreateCheckout(ctx context.Context, proposalID string) (CheckoutResult, error)
	HandleNotification(ctx context.Context, provider string, payload []byte, headers http.Header) error
	GetPayment(ctx context.Context, id string) (Payment, error)
}
