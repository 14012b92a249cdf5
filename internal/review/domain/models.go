package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           snowflake.ID `json:"id"`
	OrderID      snowflake.ID `json:"order_id"`
	DispatcherID snowflake.ID `json:"dispatcher_id"`
	Rating       int          `json:"rating"`
	Comment      string       `json:"comment"`
	CreatedAt    time.Time    `json:"created_at"`
}

// DispatcherReviews is a dispatcher's review history, newest first.
type DispatcherReviews struct {
	DispatcherID  snowflake.ID `json:"dispatcher_id"`
	Count         int          `json:"count"`
	AverageRating float64      `json:"average_rating"`
	Reviews       []Review     `json:"reviews"`
}
