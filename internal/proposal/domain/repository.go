package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, proposal *Proposal) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Proposal, error)
	ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]Proposal, error)
	FindAccepted(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Proposal, error)
	MarkAccepted(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
