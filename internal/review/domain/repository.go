package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	ListByDispatcher(ctx context.Context, db *gorm.DB, dispatcherID snowflake.ID) ([]Review, error)
}
