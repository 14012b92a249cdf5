package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/chat/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO messages (id, order_id, content, is_from_dispatcher, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.OrderID,
		msg.Content,
		msg.IsFromDispatcher,
		msg.CreatedAt,
	).Error
}

// ListByOrder returns the conversation oldest first; snowflake ids break
// ties between messages stored in the same instant.
func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.Message, error) {
	var msgs []domain.Message
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, content, is_from_dispatcher, created_at
		FROM messages
		WHERE order_id = ?
		ORDER BY created_at ASC, id ASC`,
		orderID,
	).Scan(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
