package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/descomplaca/internal/automation"
	chatdomain "github.com/smallbiznis/descomplaca/internal/chat/domain"
	"github.com/smallbiznis/descomplaca/internal/contentfilter"
	"github.com/smallbiznis/descomplaca/internal/document"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	proposaldomain "github.com/smallbiznis/descomplaca/internal/proposal/domain"
	reviewdomain "github.com/smallbiznis/descomplaca/internal/review/domain"
	"github.com/smallbiznis/descomplaca/internal/session"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"github.com/smallbiznis/descomplaca/pkg/db"
	"github.com/smallbiznis/descomplaca/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var leak *contentfilter.LeakageError
	if errors.As(err, &leak) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: leak.Error(),
			Errors: []ValidationError{
				{Field: "description", Code: "leakage_" + leak.Kind, Message: leak.Error()},
			},
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	// Malformed status values are rejected as bad input but keep the
	// invalid_state type clients already switch on.
	if errors.Is(err, orderdomain.ErrInvalidStatus) {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	}

	var providerErr *paymentdomain.ProviderError
	switch {
	case errors.As(err, &providerErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "payment_provider_error",
			Message: providerErr.Message,
		}
	case errors.Is(err, paymentdomain.ErrPaymentProvider),
		errors.Is(err, paymentdomain.ErrOperationUnsupported):
		return http.StatusBadGateway, errorPayload{
			Type:    "payment_provider_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case isInvalidStateError(err):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_state",
			Message: err.Error(),
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, paymentdomain.ErrCheckoutInProgress),
		db.IsDuplicateKeyErr(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, chatdomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many messages, slow down",
		}
	case isAutomationError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "automation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, automation.ErrMissingCredentials):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger without leaking payloads.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	return payload.Type, strconv.Itoa(status)
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, paymentdomain.ErrInvalidProposalID),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, session.ErrInvalidID):
		return true
	case isUserValidationError(err),
		isOrderValidationError(err),
		isProposalValidationError(err),
		isReviewValidationError(err),
		isChatValidationError(err),
		isDocumentValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrOwnerNotFound),
		errors.Is(err, proposaldomain.ErrNotFound),
		errors.Is(err, proposaldomain.ErrDispatcherNotFound),
		errors.Is(err, paymentdomain.ErrProposalNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound),
		errors.Is(err, paymentdomain.ErrClientNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isInvalidStateError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrStatusReserved),
		errors.Is(err, proposaldomain.ErrOrderNotOpen),
		errors.Is(err, reviewdomain.ErrOrderNotFinished),
		errors.Is(err, reviewdomain.ErrNoAcceptedProposal),
		errors.Is(err, paymentdomain.ErrProposalAlreadyPaid),
		errors.Is(err, paymentdomain.ErrDispatcherNotOnboarded),
		errors.Is(err, userdomain.ErrNotDispatcher),
		errors.Is(err, userdomain.ErrAlreadyOnboarded):
		return true
	default:
		return false
	}
}

func isAutomationError(err error) bool {
	switch {
	case errors.Is(err, automation.ErrBrowserUnavailable),
		errors.Is(err, automation.ErrNavigation),
		errors.Is(err, automation.ErrUserDataUnavailable),
		errors.Is(err, automation.ErrPortalLogin):
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrInvalidID),
		errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidOwner),
		errors.Is(err, orderdomain.ErrInvalidPlate),
		errors.Is(err, orderdomain.ErrInvalidServiceType),
		errors.Is(err, orderdomain.ErrInvalidState):
		return true
	default:
		return false
	}
}

func isProposalValidationError(err error) bool {
	switch {
	case errors.Is(err, proposaldomain.ErrInvalidOrderID),
		errors.Is(err, proposaldomain.ErrInvalidDispatcherID),
		errors.Is(err, proposaldomain.ErrInvalidFee),
		errors.Is(err, proposaldomain.ErrInvalidTax),
		errors.Is(err, proposaldomain.ErrInvalidEstimatedDays):
		return true
	default:
		return false
	}
}

func isReviewValidationError(err error) bool {
	switch {
	case errors.Is(err, reviewdomain.ErrInvalidOrderID),
		errors.Is(err, reviewdomain.ErrInvalidDispatcherID),
		errors.Is(err, reviewdomain.ErrInvalidRating):
		return true
	default:
		return false
	}
}

func isChatValidationError(err error) bool {
	switch {
	case errors.Is(err, chatdomain.ErrInvalidOrderID),
		errors.Is(err, chatdomain.ErrEmptyContent),
		errors.Is(err, chatdomain.ErrContentTooLong):
		return true
	default:
		return false
	}
}

func isDocumentValidationError(err error) bool {
	switch {
	case errors.Is(err, document.ErrInvalidOrderID),
		errors.Is(err, document.ErrInvalidFilename),
		errors.Is(err, document.ErrUnsupportedExtension),
		errors.Is(err, document.ErrEmptyFile):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return err.Error()
}

func conflictMessage(err error) string {
	if errors.Is(err, ErrConflict) || db.IsDuplicateKeyErr(err) {
		return "conflict"
	}
	return err.Error()
}
