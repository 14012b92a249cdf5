// Package automation drives the external government and plate portals the
// dispatchers work with.
package automation

import (
	"context"
	"errors"
)

// UserData is what the gov.br account page exposes about the logged-in citizen.
type UserData struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
}

// PipelineRow is one plate order as listed on the plate portal.
type PipelineRow struct {
	ExternalID string `json:"external_id"`
	Plate      string `json:"plate"`
	OwnerName  string `json:"owner_name"`
	Status     string `json:"status"`
	IsPaid     bool   `json:"is_paid"`
	HasPhotos  bool   `json:"has_photos"`
}

type Automator interface {
	// NavigateGovBR opens the gov.br login so the citizen can scan the QR code.
	NavigateGovBR(ctx context.Context) error
	ScrapeUserData(ctx context.Context) (UserData, error)
	SubmitExternalForm(ctx context.Context, data UserData) (bool, error)
	FetchExternalPipeline(ctx context.Context) ([]PipelineRow, error)
	Close() error
}

var (
	ErrBrowserUnavailable  = errors.New("automation_browser_unavailable")
	ErrNavigation          = errors.New("automation_navigation_failed")
	ErrUserDataUnavailable = errors.New("automation_user_data_unavailable")
	ErrPortalLogin         = errors.New("automation_portal_login_failed")
	ErrMissingCredentials  = errors.New("automation_portal_credentials_missing")
)
