package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/proposal/domain"
	"gorm.io/gorm"
)

const proposalColumns = `id, order_id, dispatcher_id, fee_value, tax_value, total_value,
	estimated_days, description, is_accepted, created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Proposal) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO proposals (`+proposalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OrderID,
		p.DispatcherID,
		p.FeeValue,
		p.TaxValue,
		p.TotalValue,
		p.EstimatedDays,
		p.Description,
		p.IsAccepted,
		p.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Proposal, error) {
	var p domain.Proposal
	err := db.WithContext(ctx).Raw(
		`SELECT `+proposalColumns+` FROM proposals WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := db.WithContext(ctx).Raw(
		`SELECT `+proposalColumns+` FROM proposals WHERE order_id = ? ORDER BY created_at ASC, id ASC`,
		orderID,
	).Scan(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *repo) FindAccepted(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Proposal, error) {
	var p domain.Proposal
	err := db.WithContext(ctx).Raw(
		`SELECT `+proposalColumns+` FROM proposals WHERE order_id = ? AND is_accepted = ?`,
		orderID, true,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) MarkAccepted(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE proposals SET is_accepted = ? WHERE id = ?`,
		true, id,
	).Error
}
