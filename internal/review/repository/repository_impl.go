package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reviews (id, order_id, dispatcher_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.OrderID,
		review.DispatcherID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	).Error
}

func (r *repo) ListByDispatcher(ctx context.Context, db *gorm.DB, dispatcherID snowflake.ID) ([]domain.Review, error) {
	var reviews []domain.Review
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, dispatcher_id, rating, comment, created_at
		FROM reviews
		WHERE dispatcher_id = ?
		ORDER BY created_at DESC, id DESC`,
		dispatcherID,
	).Scan(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
