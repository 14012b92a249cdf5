package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	PhoneNumber   string  `json:"phone_number"`
	TaxID         string  `json:"tax_id"`
	Role          string  `json:"role"`
	LicenseNumber *string `json:"license_number"`
}

// OnboardDispatcherRequest carries the sub-account data the payment provider
// requires before it can route a split to the dispatcher.
type OnboardDispatcherRequest struct {
	UserID        string `json:"-"`
	PostalCode    string `json:"postal_code"`
	Address       string `json:"address"`
	AddressNumber string `json:"address_number"`
	BirthDate     string `json:"birth_date"`
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	OnboardDispatcher(ctx context.Context, req OnboardDispatcherRequest) (User, error)
}

var (
	ErrInvalidID        = errors.New("invalid_user_id")
	ErrInvalidName      = errors.New("invalid_full_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidRole      = errors.New("invalid_role")
	ErrEmailTaken       = errors.New("email_already_registered")
	ErrNotFound         = errors.New("user_not_found")
	ErrNotDispatcher    = errors.New("user_not_dispatcher")
	ErrAlreadyOnboarded = errors.New("dispatcher_already_onboarded")
)
