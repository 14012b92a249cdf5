package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleDispatcher Role = "DISPATCHER"
	RoleAdmin      Role = "ADMIN"
)

type User struct {
	ID                 snowflake.ID `json:"id"`
	FullName           string       `json:"full_name"`
	Email              string       `json:"email"`
	PhoneNumber        string       `json:"phone_number"`
	TaxID              string       `json:"tax_id"`
	Role               Role         `json:"role"`
	LicenseNumber      *string      `json:"license_number,omitempty"`
	ProviderCustomerID *string      `json:"provider_customer_id,omitempty"`
	ProviderWalletID   *string      `json:"provider_wallet_id,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// WalletID returns the dispatcher's split wallet or "" when not onboarded.
func (u User) WalletID() string {
	if u.ProviderWalletID == nil {
		return ""
	}
	return *u.ProviderWalletID
}

func (u User) CustomerID() string {
	if u.ProviderCustomerID == nil {
		return ""
	}
	return *u.ProviderCustomerID
}

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleClient, RoleDispatcher, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}
