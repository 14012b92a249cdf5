package asaas

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
)

const HeaderWebhookToken = "asaas-access-token"

var confirmedEvents = map[string]struct{}{
	"PAYMENT_CONFIRMED": {},
	"PAYMENT_RECEIVED":  {},
}

// WebhookAdapter checks the shared webhook token when one is configured.
type WebhookAdapter struct {
	token string
}

func NewWebhookAdapter(token string) *WebhookAdapter {
	return &WebhookAdapter{token: strings.TrimSpace(token)}
}

func (a *WebhookAdapter) Provider() string { return ProviderName }

func (a *WebhookAdapter) Verify(_ context.Context, _ []byte, headers http.Header) error {
	if a.token == "" {
		return nil
	}
	got := strings.TrimSpace(headers.Get(HeaderWebhookToken))
	if subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) != 1 {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

type webhookEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
}

func (a *WebhookAdapter) Parse(_ context.Context, payload []byte) (*paymentdomain.Notification, error) {
	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	eventType := strings.TrimSpace(event.Event)
	paymentID := strings.TrimSpace(event.Payment.ID)
	if eventType == "" || paymentID == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	// Older webhook versions carry no event id.
	eventID := strings.TrimSpace(event.ID)
	if eventID == "" {
		eventID = eventType + ":" + paymentID
	}
	_, confirmed := confirmedEvents[eventType]

	return &paymentdomain.Notification{
		Provider:          ProviderName,
		ProviderEventID:   eventID,
		EventType:         eventType,
		ExternalPaymentID: paymentID,
		Confirmed:         confirmed,
		RawPayload:        payload,
	}, nil
}

var _ paymentdomain.WebhookAdapter = (*WebhookAdapter)(nil)
