package mercadopago

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mercadopago/sdk-go/pkg/payment"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
)

type fakeAPI struct {
	created payment.Request
	status  string
	err     error
	gotID   int
}

func (f *fakeAPI) Create(_ context.Context, request payment.Request) (*payment.Response, error) {
	f.created = request
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Response{ID: 987, Status: "pending"}, nil
}

func (f *fakeAPI) Get(_ context.Context, id int) (*payment.Response, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Response{ID: id, Status: f.status}, nil
}

func TestCreatePaymentConvertsAmount(t *testing.T) {
	api := &fakeAPI{}
	gateway := &Gateway{client: api}

	charge, err := gateway.CreatePayment(context.Background(), paymentdomain.ChargeRequest{
		PayerEmail:  "ana@example.com",
		Amount:      12345,
		Description: "Transferência",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if charge.ExternalID != "987" {
		t.Fatalf("expected external id 987, got %s", charge.ExternalID)
	}
	if api.created.TransactionAmount != 123.45 {
		t.Fatalf("expected 123.45, got %v", api.created.TransactionAmount)
	}
	if api.created.PaymentMethodID != "pix" {
		t.Fatalf("expected pix, got %s", api.created.PaymentMethodID)
	}
}

func TestCreatePaymentWrapsProviderError(t *testing.T) {
	gateway := &Gateway{client: &fakeAPI{err: errors.New("bad token")}}
	_, err := gateway.CreatePayment(context.Background(), paymentdomain.ChargeRequest{Amount: 100})
	if !errors.Is(err, paymentdomain.ErrPaymentProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestUnsupportedOperations(t *testing.T) {
	gateway := &Gateway{client: &fakeAPI{}}
	if _, err := gateway.CreateSubAccount(context.Background(), paymentdomain.SubAccountRequest{}); !errors.Is(err, paymentdomain.ErrOperationUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if _, err := gateway.CreateCustomer(context.Background(), paymentdomain.CustomerRequest{}); !errors.Is(err, paymentdomain.ErrOperationUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestParseLooksUpStatus(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		status    string
		confirmed bool
		eventID   string
	}{
		{name: "approved", payload: `{"id":555,"type":"payment","action":"payment.updated","data":{"id":"42"}}`, status: "approved", confirmed: true, eventID: "555"},
		{name: "pending", payload: `{"type":"payment","action":"payment.updated","data":{"id":42}}`, status: "pending", eventID: "payment.updated:42"},
		{name: "other_topic", payload: `{"type":"merchant_order","data":{"id":"42"}}`, eventID: "merchant_order:42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{status: tt.status}
			adapter := NewWebhookAdapter(&Gateway{client: api}, "")
			n, err := adapter.Parse(context.Background(), []byte(tt.payload))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if n.Confirmed != tt.confirmed {
				t.Fatalf("expected confirmed=%v", tt.confirmed)
			}
			if n.ExternalPaymentID != "42" {
				t.Fatalf("expected payment 42, got %s", n.ExternalPaymentID)
			}
			if n.ProviderEventID != tt.eventID {
				t.Fatalf("expected event id %s, got %s", tt.eventID, n.ProviderEventID)
			}
		})
	}
}

func TestParseRejectsMissingID(t *testing.T) {
	adapter := NewWebhookAdapter(nil, "")
	if _, err := adapter.Parse(context.Background(), []byte(`{"type":"payment"}`)); !errors.Is(err, paymentdomain.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	secret := "mp_secret"
	payload := []byte(`{"type":"payment","data":{"id":"42"}}`)
	headers := http.Header{}
	headers.Set(HeaderRequestID, "req-1")
	headers.Set(HeaderSignature, sign(secret, "42", "req-1", "1700000000"))

	adapter := NewWebhookAdapter(nil, secret)
	if err := adapter.Verify(context.Background(), payload, headers); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	headers.Set(HeaderSignature, sign("wrong", "42", "req-1", "1700000000"))
	if err := adapter.Verify(context.Background(), payload, headers); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}
}

func sign(secret, dataID, requestID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)))
	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
