package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	SetProviderCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID, customerID string, now time.Time) error
	SetProviderWallet(ctx context.Context, db *gorm.DB, id snowflake.ID, walletID string, now time.Time) error
}
