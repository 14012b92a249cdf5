package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Order struct {
	ID             snowflake.ID `json:"id"`
	OwnerID        snowflake.ID `json:"owner_id"`
	Status         Status       `json:"status"`
	VehiclePlate   string       `json:"vehicle_plate"`
	VehicleRenavam *string      `json:"vehicle_renavam,omitempty"`
	ServiceType    string       `json:"service_type"`
	Description    string       `json:"description"`
	City           string       `json:"city"`
	State          string       `json:"state"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
