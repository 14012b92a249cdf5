package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, full_name, email, phone_number, tax_id, role, license_number,
			provider_customer_id, provider_wallet_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FullName,
		user.Email,
		user.PhoneNumber,
		user.TaxID,
		string(user.Role),
		user.LicenseNumber,
		user.ProviderCustomerID,
		user.ProviderWalletID,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, full_name, email, phone_number, tax_id, role, license_number,
			provider_customer_id, provider_wallet_id, created_at, updated_at
		FROM users WHERE id = ?`,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) SetProviderCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID, customerID string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET provider_customer_id = ?, updated_at = ? WHERE id = ?`,
		customerID, now, id,
	).Error
}

func (r *repo) SetProviderWallet(ctx context.Context, db *gorm.DB, id snowflake.ID, walletID string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET provider_wallet_id = ?, updated_at = ? WHERE id = ?`,
		walletID, now, id,
	).Error
}
