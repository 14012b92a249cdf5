package domain

import (
	"context"
	"errors"
)

type SendMessageRequest struct {
	OrderID          string `json:"order_id"`
	Content          string `json:"content"`
	IsFromDispatcher bool   `json:"is_from_dispatcher"`
}

type Service interface {
	Send(ctx context.Context, req SendMessageRequest) (Message, error)
	List(ctx context.Context, orderID string) ([]Message, error)
}

const MaxContentLength = 4000

var (
	ErrInvalidOrderID = errors.New("invalid_order_id")
	ErrEmptyContent   = errors.New("empty_message")
	ErrContentTooLong = errors.New("message_too_long")
	ErrRateLimited    = errors.New("chat_rate_limited")
)
