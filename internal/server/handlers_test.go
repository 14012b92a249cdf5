package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	chatdomain "github.com/smallbiznis/descomplaca/internal/chat/domain"
	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/contentfilter"
	"github.com/smallbiznis/descomplaca/internal/document"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	"github.com/smallbiznis/descomplaca/internal/pipeline"
	proposaldomain "github.com/smallbiznis/descomplaca/internal/proposal/domain"
	"github.com/smallbiznis/descomplaca/internal/session"
	"go.uber.org/zap"
)

type fakeOrderService struct {
	orderdomain.Service
	lastStatus string
	err        error
}

func (f *fakeOrderService) UpdateStatus(_ context.Context, req orderdomain.UpdateStatusRequest) (orderdomain.Order, error) {
	f.lastStatus = req.Status
	if f.err != nil {
		return orderdomain.Order{}, f.err
	}
	return orderdomain.Order{ID: snowflake.ID(10), Status: orderdomain.Status(req.Status)}, nil
}

type fakeProposalService struct {
	proposaldomain.Service
	err error
}

func (f *fakeProposalService) Submit(context.Context, proposaldomain.SubmitProposalRequest) (proposaldomain.Proposal, error) {
	return proposaldomain.Proposal{}, f.err
}

type fakePaymentService struct {
	paymentdomain.Service
	provider    string
	payload     []byte
	notifyErr   error
	checkoutErr error
}

func (f *fakePaymentService) CreateCheckout(context.Context, string) (paymentdomain.CheckoutResult, error) {
	if f.checkoutErr != nil {
		return paymentdomain.CheckoutResult{}, f.checkoutErr
	}
	return paymentdomain.CheckoutResult{PaymentID: 7, PaymentURL: "https://pay/inv_1", QRCode: "000201"}, nil
}

func (f *fakePaymentService) HandleNotification(_ context.Context, provider string, payload []byte, _ http.Header) error {
	f.provider = provider
	f.payload = payload
	return f.notifyErr
}

type fakeChatService struct {
	chatdomain.Service
	err error
}

func (f *fakeChatService) Send(context.Context, chatdomain.SendMessageRequest) (chatdomain.Message, error) {
	return chatdomain.Message{}, f.err
}

type fakeUploader struct {
	orderID  string
	filename string
	content  string
}

func (f *fakeUploader) Upload(_ context.Context, orderID, filename string, r io.Reader) (document.StoredFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return document.StoredFile{}, err
	}
	f.orderID, f.filename, f.content = orderID, filename, string(raw)
	return document.StoredFile{Filename: "01h-" + filename, Path: "uploads/" + orderID + "/01h-" + filename, Size: int64(len(raw))}, nil
}

type fakeSessions struct {
	cleared []string
	err     error
}

func (f *fakeSessions) Start(context.Context) (session.Session, error) {
	return session.Session{ID: "c0ffee"}, nil
}

func (f *fakeSessions) Clear(_ context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeSessions) Process(_ context.Context, id string) (session.ProcessResult, error) {
	if f.err != nil {
		return session.ProcessResult{}, f.err
	}
	return session.ProcessResult{Status: session.StatusSuccess, Protocol: "DET-2025-C0FFEE00"}, nil
}

func (f *fakeSessions) StartGovBRLogin(context.Context) error { return nil }

type fakePipeline struct {
	snap pipeline.Snapshot
}

func (f *fakePipeline) Get(context.Context) pipeline.Snapshot { return f.snap }

func (f *fakePipeline) Refresh(context.Context) (pipeline.Snapshot, error) { return f.snap, nil }

func newTestServer(t *testing.T, s *Server) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	s.engine = router
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.catalog == nil {
		catalog, err := config.DefaultServiceCatalog()
		if err != nil {
			t.Fatalf("default catalog: %v", err)
		}
		s.catalog = config.NewStaticCatalogHolder(catalog)
	}
	s.registerAPIRoutes()
	s.registerFallback()
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	return body.Error
}

func TestUpdateOrderStatusAcceptsQueryAndBody(t *testing.T) {
	orders := &fakeOrderService{}
	router := newTestServer(t, &Server{orderSvc: orders})

	resp := doJSON(t, router, http.MethodPut, "/api/orders/10/status?status=CANCELLED", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if orders.lastStatus != "CANCELLED" {
		t.Fatalf("expected status from query, got %q", orders.lastStatus)
	}

	resp = doJSON(t, router, http.MethodPut, "/api/orders/10/status", `{"status":"IN_PROGRESS"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if orders.lastStatus != "IN_PROGRESS" {
		t.Fatalf("expected status from body, got %q", orders.lastStatus)
	}
}

func TestUpdateOrderStatusInvalidStatusIs400(t *testing.T) {
	router := newTestServer(t, &Server{orderSvc: &fakeOrderService{err: orderdomain.ErrInvalidStatus}})

	resp := doJSON(t, router, http.MethodPut, "/api/orders/10/status?status=DONE", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeError(t, resp).Type; got != "invalid_state" {
		t.Fatalf("expected invalid_state, got %s", got)
	}
}

func TestSubmitProposalErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantType string
	}{
		{name: "leakage", err: &contentfilter.LeakageError{Kind: contentfilter.KindPhone}, wantCode: http.StatusBadRequest, wantType: "validation_error"},
		{name: "order not open", err: proposaldomain.ErrOrderNotOpen, wantCode: http.StatusConflict, wantType: "invalid_state"},
		{name: "order missing", err: orderdomain.ErrNotFound, wantCode: http.StatusNotFound, wantType: "not_found"},
		{name: "bad fee", err: proposaldomain.ErrInvalidFee, wantCode: http.StatusBadRequest, wantType: "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestServer(t, &Server{proposalSvc: &fakeProposalService{err: tt.err}})
			resp := doJSON(t, router, http.MethodPost, "/api/proposals", `{"order_id":"1","dispatcher_id":"2","fee_value":500}`)
			if resp.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.Code)
			}
			if got := decodeError(t, resp).Type; got != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, got)
			}
		})
	}
}

func TestLeakageMessageIsSurfaced(t *testing.T) {
	router := newTestServer(t, &Server{proposalSvc: &fakeProposalService{err: &contentfilter.LeakageError{Kind: contentfilter.KindEmail}}})

	resp := doJSON(t, router, http.MethodPost, "/api/proposals", `{"description":"contato@teste.com"}`)
	if got := decodeError(t, resp).Message; got != "Sensitive info (email) detected in message" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCheckoutProviderErrorIs502(t *testing.T) {
	payments := &fakePaymentService{checkoutErr: &paymentdomain.ProviderError{
		Provider:   "asaas",
		Operation:  "create_payment",
		StatusCode: 400,
		Message:    "Cliente inválido",
	}}
	router := newTestServer(t, &Server{paymentSvc: payments})

	resp := doJSON(t, router, http.MethodPost, "/api/payments/checkout/55", "")
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	payload := decodeError(t, resp)
	if payload.Type != "payment_provider_error" || payload.Message != "Cliente inválido" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestCheckoutReturnsPaymentLinks(t *testing.T) {
	router := newTestServer(t, &Server{paymentSvc: &fakePaymentService{}})

	resp := doJSON(t, router, http.MethodPost, "/api/payments/checkout/55", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["payment_url"] != "https://pay/inv_1" || body["qr_code"] != "000201" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestWebhookRoutes(t *testing.T) {
	payments := &fakePaymentService{}
	router := newTestServer(t, &Server{paymentSvc: payments})
	payload := `{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_1","status":"CONFIRMED"}}`

	resp := doJSON(t, router, http.MethodPost, "/api/payments/webhooks/MercadoPago", payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if payments.provider != "mercadopago" {
		t.Fatalf("expected normalized provider, got %q", payments.provider)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/payments/webhook/asaas", payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if payments.provider != "asaas" || string(payments.payload) != payload {
		t.Fatalf("expected raw payload forwarded to asaas, got %q %q", payments.provider, payments.payload)
	}
	if resp.Body.String() != `{"status":"received"}` {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestWebhookRejections(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{err: paymentdomain.ErrInvalidSignature, wantCode: http.StatusUnauthorized},
		{err: paymentdomain.ErrProviderNotFound, wantCode: http.StatusNotFound},
		{err: paymentdomain.ErrInvalidPayload, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := newTestServer(t, &Server{paymentSvc: &fakePaymentService{notifyErr: tt.err}})
			resp := doJSON(t, router, http.MethodPost, "/api/payments/webhooks/asaas", `{}`)
			if resp.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestChatRateLimitedIs429(t *testing.T) {
	router := newTestServer(t, &Server{chatSvc: &fakeChatService{err: chatdomain.ErrRateLimited}})

	resp := doJSON(t, router, http.MethodPost, "/api/chat", `{"order_id":"1","content":"oi"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
}

func TestUploadDocument(t *testing.T) {
	uploader := &fakeUploader{}
	router := newTestServer(t, &Server{documents: uploader})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "crlv.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF"))
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload/42", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if uploader.orderID != "42" || uploader.filename != "crlv.pdf" || uploader.content != "%PDF" {
		t.Fatalf("unexpected upload %+v", uploader)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/documents/upload/42", `{}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.Code)
	}
}

func TestSessionRoutes(t *testing.T) {
	sessions := &fakeSessions{}
	router := newTestServer(t, &Server{sessions: sessions})

	resp := doJSON(t, router, http.MethodPost, "/api/sessions", "")
	if resp.Code != http.StatusOK || resp.Body.String() != `{"session_id":"c0ffee"}` {
		t.Fatalf("unexpected start response %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/sessions/c0ffee/process", "")
	if resp.Code != http.StatusOK || resp.Body.String() != `{"status":"success","protocol":"DET-2025-C0FFEE00"}` {
		t.Fatalf("unexpected process response %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodDelete, "/api/sessions/c0ffee", "")
	if resp.Code != http.StatusOK || len(sessions.cleared) != 1 {
		t.Fatalf("expected session cleared, got %d %v", resp.Code, sessions.cleared)
	}

	sessions.err = session.ErrNotFound
	resp = doJSON(t, router, http.MethodPost, "/api/sessions/gone/process", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestPipelineData(t *testing.T) {
	router := newTestServer(t, &Server{pipeline: &fakePipeline{snap: pipeline.Snapshot{Data: nil}}})

	resp := doJSON(t, router, http.MethodGet, "/api/pipeline/data", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != `{"data":null,"last_updated":null}` {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/pipeline/refresh", "")
	if resp.Body.String() != `{"count":0,"status":"success"}` {
		t.Fatalf("unexpected refresh body %s", resp.Body.String())
	}
}

func TestCatalogRoutes(t *testing.T) {
	router := newTestServer(t, &Server{})

	resp := doJSON(t, router, http.MethodGet, "/api/services/renovacao_cnh", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/services/emplacamento_drone", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/nope", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 fallback, got %d", resp.Code)
	}
}
