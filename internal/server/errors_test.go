package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/smallbiznis/descomplaca/internal/automation"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	reviewdomain "github.com/smallbiznis/descomplaca/internal/review/domain"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantType string
	}{
		{err: orderdomain.ErrNotFound, wantCode: http.StatusNotFound, wantType: "not_found"},
		{err: fmt.Errorf("load: %w", gorm.ErrRecordNotFound), wantCode: http.StatusNotFound, wantType: "not_found"},
		{err: reviewdomain.ErrOrderNotFinished, wantCode: http.StatusConflict, wantType: "invalid_state"},
		{err: orderdomain.ErrStatusReserved, wantCode: http.StatusConflict, wantType: "invalid_state"},
		{err: orderdomain.ErrInvalidStatus, wantCode: http.StatusBadRequest, wantType: "invalid_state"},
		{err: orderdomain.ErrInvalidPlate, wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{err: reviewdomain.ErrInvalidRating, wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{err: userdomain.ErrEmailTaken, wantCode: http.StatusConflict, wantType: "conflict"},
		{err: paymentdomain.ErrCheckoutInProgress, wantCode: http.StatusConflict, wantType: "conflict"},
		{err: paymentdomain.ErrProposalAlreadyPaid, wantCode: http.StatusConflict, wantType: "invalid_state"},
		{err: paymentdomain.ErrDispatcherNotOnboarded, wantCode: http.StatusConflict, wantType: "invalid_state"},
		{err: paymentdomain.ErrOperationUnsupported, wantCode: http.StatusBadGateway, wantType: "payment_provider_error"},
		{err: fmt.Errorf("scrape: %w", automation.ErrUserDataUnavailable), wantCode: http.StatusBadGateway, wantType: "automation_error"},
		{err: automation.ErrMissingCredentials, wantCode: http.StatusServiceUnavailable, wantType: "service_unavailable"},
		{err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantType: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, payload := mapError(tt.err)
			if code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, code)
			}
			if payload.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, payload.Type)
			}
		})
	}
}

func TestValidationErrorField(t *testing.T) {
	_, payload := mapError(orderdomain.ErrInvalidPlate)
	if len(payload.Errors) != 1 || payload.Errors[0].Field != "vehicle_plate" {
		t.Fatalf("unexpected validation errors %+v", payload.Errors)
	}
}
