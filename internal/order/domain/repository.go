package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListOpenFilter struct {
	City  string
	State string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	ListOpen(ctx context.Context, db *gorm.DB, filter ListOpenFilter, cursor *pagination.Cursor, limit int) ([]*Order, error)
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, now time.Time) error
	// TransitionIf moves the order to `to` only while it is in `from`.
	TransitionIf(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, now time.Time) (bool, error)
}
