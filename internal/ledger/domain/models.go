package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LedgerEntryDirection represents debit or credit postings.
type LedgerEntryDirection string

const (
	LedgerEntryDirectionDebit  LedgerEntryDirection = "debit"
	LedgerEntryDirectionCredit LedgerEntryDirection = "credit"
)

type LedgerSourceType string

const (
	SourceTypePayment LedgerSourceType = "payment" // confirmed client payment split between platform and dispatcher
)

type LedgerAccountCode string

const (
	AccountCodeCash               LedgerAccountCode = "cash"
	AccountCodePlatformCommission LedgerAccountCode = "platform_commission"
	AccountCodeDispatcherPayable  LedgerAccountCode = "dispatcher_payable"
)

// LedgerEntry captures the immutable header for a financial event.
type LedgerEntry struct {
	ID         snowflake.ID     `json:"id"`
	SourceType LedgerSourceType `json:"source_type"`
	SourceID   snowflake.ID     `json:"source_id"`
	Currency   string           `json:"currency"`
	OccurredAt time.Time        `json:"occurred_at"`
	CreatedAt  time.Time        `json:"created_at"`
}

// LedgerEntryLine is a double-entry posting line.
type LedgerEntryLine struct {
	ID            snowflake.ID         `json:"id"`
	LedgerEntryID snowflake.ID         `json:"ledger_entry_id"`
	AccountCode   LedgerAccountCode    `json:"account_code"`
	Direction     LedgerEntryDirection `json:"direction"`
	Amount        int64                `json:"amount"`
	CreatedAt     time.Time            `json:"created_at"`
}
