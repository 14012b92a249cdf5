package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProposalID      = errors.New("invalid_proposal_id")
	ErrProposalNotFound       = errors.New("proposal_not_found")
	ErrProposalAlreadyPaid    = errors.New("proposal_already_paid")
	ErrPaymentNotFound        = errors.New("payment_not_found")
	ErrClientNotFound         = errors.New("client_not_found")
	ErrDispatcherNotOnboarded = errors.New("dispatcher_not_onboarded")
	ErrCheckoutInProgress     = errors.New("checkout_in_progress")
	ErrProviderNotFound       = errors.New("payment_provider_not_found")
	ErrInvalidSignature       = errors.New("invalid_webhook_signature")
	ErrInvalidPayload         = errors.New("invalid_webhook_payload")
	ErrInvalidConfig          = errors.New("invalid_payment_config")
	ErrOperationUnsupported   = errors.New("operation_unsupported_by_provider")

	// ErrPaymentProvider matches every *ProviderError.
	ErrPaymentProvider = errors.New("payment_provider_error")
)

// ProviderError wraps a failed gateway call and keeps the provider's message.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed (%d): %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrPaymentProvider }
