package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Proposal is a dispatcher's quote for an order. Values are centavos and
// TotalValue is always FeeValue+TaxValue.
type Proposal struct {
	ID            snowflake.ID `json:"id"`
	OrderID       snowflake.ID `json:"order_id"`
	DispatcherID  snowflake.ID `json:"dispatcher_id"`
	FeeValue      int64        `json:"fee_value"`
	TaxValue      int64        `json:"tax_value"`
	TotalValue    int64        `json:"total_value"`
	EstimatedDays int          `json:"estimated_days"`
	Description   string       `json:"description"`
	IsAccepted    bool         `json:"is_accepted"`
	CreatedAt     time.Time    `json:"created_at"`
}
