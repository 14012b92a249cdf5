package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service posts balanced ledger entries. Callers pass their own transaction
// so the entry commits together with the state change it records.
type Service interface {
	CreateEntryTx(ctx context.Context, tx *gorm.DB, sourceType LedgerSourceType, sourceID snowflake.ID, occurredAt time.Time, lines []LedgerEntryLine) (bool, error)
	PostPaymentTx(ctx context.Context, tx *gorm.DB, paymentID snowflake.ID, split Split, occurredAt time.Time) error
	ListLines(ctx context.Context, sourceType LedgerSourceType, sourceID snowflake.ID) ([]LedgerEntryLine, error)
}

var (
	ErrInvalidSourceType    = errors.New("invalid_source_type")
	ErrInvalidSourceID      = errors.New("invalid_source_id")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidEntryLines    = errors.New("invalid_entry_lines")
	ErrInvalidAccount       = errors.New("invalid_account")
	ErrInvalidLineDirection = errors.New("invalid_line_direction")
	ErrInvalidLineAmount    = errors.New("invalid_line_amount")
	ErrUnbalancedEntry      = errors.New("unbalanced_entry")
)

// ValidateBalanced checks that debits equal credits.
func ValidateBalanced(lines []LedgerEntryLine) error {
	var debit, credit int64
	for _, line := range lines {
		switch line.Direction {
		case LedgerEntryDirectionDebit:
			debit += line.Amount
		case LedgerEntryDirectionCredit:
			credit += line.Amount
		}
	}
	if debit != credit {
		return ErrUnbalancedEntry
	}
	return nil
}

// PaymentLines books cash received against the commission and the dispatcher payable.
func PaymentLines(split Split) []LedgerEntryLine {
	return []LedgerEntryLine{
		{AccountCode: AccountCodeCash, Direction: LedgerEntryDirectionDebit, Amount: split.Total},
		{AccountCode: AccountCodePlatformCommission, Direction: LedgerEntryDirectionCredit, Amount: split.Commission},
		{AccountCode: AccountCodeDispatcherPayable, Direction: LedgerEntryDirectionCredit, Amount: split.Payout},
	}
}
