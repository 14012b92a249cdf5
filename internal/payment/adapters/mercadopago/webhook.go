package mercadopago

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
)

const (
	HeaderSignature = "x-signature"
	HeaderRequestID = "x-request-id"

	topicPayment = "payment"
)

// StatusLookup resolves the current status of a provider payment.
type StatusLookup interface {
	Lookup(ctx context.Context, externalID string) (string, error)
}

// WebhookAdapter handles payment.* notifications. Notifications carry only the
// payment id, so Parse asks the API for the status.
type WebhookAdapter struct {
	lookup StatusLookup
	secret string
}

func NewWebhookAdapter(lookup StatusLookup, secret string) *WebhookAdapter {
	return &WebhookAdapter{lookup: lookup, secret: strings.TrimSpace(secret)}
}

func (a *WebhookAdapter) Provider() string { return ProviderName }

type notification struct {
	ID     json.RawMessage `json:"id"`
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

func (a *WebhookAdapter) Verify(_ context.Context, payload []byte, headers http.Header) error {
	if a.secret == "" {
		return nil
	}
	ts, signature, err := parseSignature(headers.Get(HeaderSignature))
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(rawID(n.Data.ID)), headers.Get(HeaderRequestID), ts)
	mac := hmac.New(sha256.New, []byte(a.secret))
	_, _ = mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *WebhookAdapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Notification, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	paymentID := rawID(n.Data.ID)
	if paymentID == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	eventType := strings.TrimSpace(n.Action)
	if eventType == "" {
		eventType = strings.TrimSpace(n.Type)
	}
	eventID := rawID(n.ID)
	if eventID == "" {
		eventID = eventType + ":" + paymentID
	}

	out := &paymentdomain.Notification{
		Provider:          ProviderName,
		ProviderEventID:   eventID,
		EventType:         eventType,
		ExternalPaymentID: paymentID,
		RawPayload:        payload,
	}
	if strings.TrimSpace(n.Type) != topicPayment || a.lookup == nil {
		return out, nil
	}

	status, err := a.lookup.Lookup(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	out.Confirmed = status == statusApproved
	return out, nil
}

func parseSignature(header string) (string, string, error) {
	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return "", "", fmt.Errorf("malformed signature header")
	}
	return ts, v1, nil
}

// rawID accepts ids sent either as JSON strings or numbers.
func rawID(raw json.RawMessage) string {
	value := strings.TrimSpace(string(raw))
	if value == "" || value == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return value
}

var _ paymentdomain.WebhookAdapter = (*WebhookAdapter)(nil)
