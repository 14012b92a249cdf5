package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// StatusPaid is written only by reconciliation; other statuses mirror what
// the provider reported at checkout.
const StatusPaid = "PAID"

type Payment struct {
	ID              snowflake.ID `json:"id"`
	ProposalID      snowflake.ID `json:"proposal_id"`
	Provider        string       `json:"provider"`
	ExternalID      string       `json:"external_id"`
	Status          string       `json:"status"`
	Amount          int64        `json:"amount"`
	CommissionValue int64        `json:"commission_value"`
	PayoutValue     int64        `json:"payout_value"`
	InvoiceURL      string       `json:"invoice_url"`
	QRCodeURL       string       `json:"qr_code_url"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// EventRecord is the raw audit copy of a provider notification.
type EventRecord struct {
	ID                snowflake.ID   `json:"id"`
	Provider          string         `json:"provider"`
	ProviderEventID   string         `json:"provider_event_id"`
	EventType         string         `json:"event_type"`
	ExternalPaymentID string         `json:"external_payment_id"`
	Payload           datatypes.JSON `json:"payload"`
	ReceivedAt        time.Time      `json:"received_at"`
}

// CheckoutResult is what the client needs to pay.
type CheckoutResult struct {
	PaymentID  snowflake.ID `json:"payment_id"`
	PaymentURL string       `json:"payment_url"`
	QRCode     string       `json:"qr_code"`
}

// Notification is a provider webhook normalized by an adapter.
type Notification struct {
	Provider          string
	ProviderEventID   string
	EventType         string
	ExternalPaymentID string
	Confirmed         bool
	RawPayload        []byte
}
