package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, msg *Message) error
	ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]Message, error)
}
