package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
)

const (
	ProviderName   = "asaas"
	DefaultBaseURL = "https://sandbox.asaas.com/api/v3"

	headerAccessToken = "access_token"
	dueDateLayout     = "2006-01-02"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the Asaas REST API. Values cross the wire in reais.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Provider() string { return ProviderName }

type customerRequest struct {
	Name        string `json:"name"`
	CpfCnpj     string `json:"cpfCnpj"`
	Email       string `json:"email,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateCustomer(ctx context.Context, req paymentdomain.CustomerRequest) (string, error) {
	var resp idResponse
	err := c.do(ctx, http.MethodPost, "/customers", "create_customer", customerRequest{
		Name:        req.Name,
		CpfCnpj:     req.TaxID,
		Email:       req.Email,
		MobilePhone: req.Phone,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

type split struct {
	WalletID   string  `json:"walletId"`
	FixedValue float64 `json:"fixedValue"`
}

type paymentRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
	Split             []split `json:"split,omitempty"`
}

type paymentResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	InvoiceURL  string `json:"invoiceUrl"`
	BankSlipURL string `json:"bankSlipUrl"`
}

func (c *Client) CreatePayment(ctx context.Context, req paymentdomain.ChargeRequest) (paymentdomain.Charge, error) {
	body := paymentRequest{
		Customer:          req.CustomerID,
		BillingType:       req.BillingType,
		Value:             toReais(req.Amount),
		DueDate:           req.DueDate.Format(dueDateLayout),
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}
	for _, rule := range req.Splits {
		body.Split = append(body.Split, split{WalletID: rule.WalletID, FixedValue: toReais(rule.FixedValue)})
	}

	var resp paymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments", "create_payment", body, &resp); err != nil {
		return paymentdomain.Charge{}, err
	}
	return paymentdomain.Charge{
		ExternalID: resp.ID,
		Status:     resp.Status,
		InvoiceURL: resp.InvoiceURL,
		QRCodeURL:  resp.BankSlipURL,
	}, nil
}

type accountRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	MobilePhone   string `json:"mobilePhone,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"addressNumber,omitempty"`
	BirthDate     string `json:"birthDate,omitempty"`
}

type accountResponse struct {
	ID       string `json:"id"`
	WalletID string `json:"walletId"`
}

func (c *Client) CreateSubAccount(ctx context.Context, req paymentdomain.SubAccountRequest) (paymentdomain.SubAccount, error) {
	var resp accountResponse
	err := c.do(ctx, http.MethodPost, "/accounts", "create_sub_account", accountRequest{
		Name:          req.Name,
		Email:         req.Email,
		CpfCnpj:       req.TaxID,
		MobilePhone:   req.Phone,
		PostalCode:    req.PostalCode,
		Address:       req.Address,
		AddressNumber: req.AddressNumber,
		BirthDate:     req.BirthDate,
	}, &resp)
	if err != nil {
		return paymentdomain.SubAccount{}, err
	}
	if resp.WalletID == "" {
		return paymentdomain.SubAccount{}, &paymentdomain.ProviderError{
			Provider:  ProviderName,
			Operation: "create_sub_account",
			Message:   "response carried no walletId",
		}
	}
	return paymentdomain.SubAccount{ID: resp.ID, WalletID: resp.WalletID}, nil
}

type errorResponse struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path, operation string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAccessToken, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return &paymentdomain.ProviderError{Provider: ProviderName, Operation: operation, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &paymentdomain.ProviderError{Provider: ProviderName, Operation: operation, Message: err.Error(), Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &paymentdomain.ProviderError{
			Provider:   ProviderName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &paymentdomain.ProviderError{
			Provider:   ProviderName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decode response: %v", err),
			Err:        errors.Join(paymentdomain.ErrInvalidPayload, err),
		}
	}
	return nil
}

func errorMessage(raw []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && len(parsed.Errors) > 0 {
		parts := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			parts = append(parts, e.Description)
		}
		return strings.Join(parts, "; ")
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "empty response"
	}
	return msg
}

func toReais(centavos int64) float64 {
	return float64(centavos) / 100
}

var _ paymentdomain.Gateway = (*Client)(nil)
