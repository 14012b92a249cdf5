package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/order/domain"
	"github.com/smallbiznis/descomplaca/pkg/db/pagination"
	"gorm.io/gorm"
)

const orderColumns = `id, owner_id, status, vehicle_plate, vehicle_renavam, service_type,
	description, city, state, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OwnerID,
		string(order.Status),
		order.VehiclePlate,
		order.VehicleRenavam,
		order.ServiceType,
		order.Description,
		order.City,
		order.State,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

// ListOpen returns up to limit OPEN orders newest first, starting after cursor.
func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, filter domain.ListOpenFilter, cursor *pagination.Cursor, limit int) ([]*domain.Order, error) {
	stmt := db.WithContext(ctx).
		Table("orders").
		Select(orderColumns).
		Where("status = ?", string(domain.StatusOpen))
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}
	if cursor != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, pagination.ErrInvalidPageToken
		}
		stmt = stmt.Where("(created_at < ? OR (created_at = ? AND id < ?))", createdAt, createdAt, id)
	}

	var orders []*domain.Order
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now, id,
	).Error
}

func (r *repo) TransitionIf(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), now, id, string(from),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
