// Package session tracks short-lived automation sessions: a citizen starts
// one, the bot scrapes gov.br on it, and it is cleared once processed or
// idle for too long.
package session

import (
	"context"
	"errors"
	"time"
)

type Session struct {
	ID         string         `json:"session_id"`
	CreatedAt  time.Time      `json:"created_at"`
	LastAccess time.Time      `json:"last_access"`
	Data       map[string]any `json:"data"`
}

// Store keeps sessions alive while they are used. Get and Update count as
// access and push the idle deadline forward.
type Store interface {
	Create(ctx context.Context) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id, key string, value any) error
	Clear(ctx context.Context, id string) error
}

var (
	ErrNotFound  = errors.New("session_not_found")
	ErrInvalidID = errors.New("invalid_session_id")
)
