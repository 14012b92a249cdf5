package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Message is an append-only chat line on an order.
type Message struct {
	ID               snowflake.ID `json:"id"`
	OrderID          snowflake.ID `json:"order_id"`
	Content          string       `json:"content"`
	IsFromDispatcher bool         `json:"is_from_dispatcher"`
	CreatedAt        time.Time    `json:"created_at"`
}
