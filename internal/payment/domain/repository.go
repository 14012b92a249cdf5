package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByExternalID(ctx context.Context, db *gorm.DB, provider, externalID string) (*Payment, error)
	// MarkPaid flips a payment to PAID and reports false when it already was.
	MarkPaid(ctx context.Context, db *gorm.DB, provider, externalID string, now time.Time) (bool, error)
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
}
