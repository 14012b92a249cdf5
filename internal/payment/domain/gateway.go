package domain

import (
	"context"
	"net/http"
	"time"
)

const BillingTypePix = "PIX"

type CustomerRequest struct {
	Name  string
	TaxID string
	Email string
	Phone string
}

type SplitRule struct {
	WalletID   string
	FixedValue int64
}

type ChargeRequest struct {
	CustomerID        string
	PayerEmail        string
	BillingType       string
	Amount            int64
	DueDate           time.Time
	Description       string
	ExternalReference string
	Splits            []SplitRule
}

type Charge struct {
	ExternalID string
	Status     string
	InvoiceURL string
	QRCodeURL  string
}

type SubAccountRequest struct {
	Name          string
	Email         string
	TaxID         string
	Phone         string
	PostalCode    string
	Address       string
	AddressNumber string
	BirthDate     string
}

type SubAccount struct {
	ID       string
	WalletID string
}

// Gateway creates customers, charges and split sub-accounts at a provider.
// Amounts are centavos; adapters convert to the provider's unit.
type Gateway interface {
	Provider() string
	CreateCustomer(ctx context.Context, req CustomerRequest) (string, error)
	CreatePayment(ctx context.Context, req ChargeRequest) (Charge, error)
	CreateSubAccount(ctx context.Context, req SubAccountRequest) (SubAccount, error)
}

// WebhookAdapter authenticates and normalizes provider notifications.
type WebhookAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Notification, error)
}
