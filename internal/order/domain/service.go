package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/descomplaca/pkg/db/pagination"
)

type CreateOrderRequest struct {
	OwnerID        string  `json:"owner_id"`
	VehiclePlate   string  `json:"vehicle_plate"`
	VehicleRenavam *string `json:"vehicle_renavam"`
	ServiceType    string  `json:"service_type"`
	Description    string  `json:"description"`
	City           string  `json:"city"`
	State          string  `json:"state"`
}

type ListOpenRequest struct {
	City      string
	State     string
	PageToken string
	PageSize  int
}

type ListOpenResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	ListOpen(ctx context.Context, req ListOpenRequest) (ListOpenResponse, error)
	GetByID(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Order, error)
}

var (
	ErrInvalidID          = errors.New("invalid_order_id")
	ErrInvalidOwner       = errors.New("invalid_owner_id")
	ErrOwnerNotFound      = errors.New("owner_not_found")
	ErrInvalidPlate       = errors.New("invalid_vehicle_plate")
	ErrInvalidServiceType = errors.New("invalid_service_type")
	ErrInvalidState       = errors.New("invalid_state_code")
	ErrNotFound           = errors.New("order_not_found")
	// ErrInvalidStatus is an invalid-state error reported for malformed input.
	ErrInvalidStatus = errors.New("invalid_status")
	// ErrStatusReserved rejects manual moves into a reconciliation-only status.
	ErrStatusReserved = errors.New("status_reserved_for_payment")
)
