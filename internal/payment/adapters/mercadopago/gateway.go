package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
)

const (
	ProviderName = "mercadopago"

	methodPix      = "pix"
	statusApproved = "approved"
)

// paymentAPI is the slice of payment.Client the adapter relies on.
type paymentAPI interface {
	Create(ctx context.Context, request payment.Request) (*payment.Response, error)
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// Gateway creates PIX charges through the Mercado Pago SDK. Split payouts are
// settled outside the provider, so the payout is only recorded as metadata.
type Gateway struct {
	client paymentAPI
}

func NewGateway(accessToken string) (*Gateway, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, errors.Join(paymentdomain.ErrInvalidConfig, err)
	}
	return &Gateway{client: payment.NewClient(cfg)}, nil
}

func (g *Gateway) Provider() string { return ProviderName }

// CreateCustomer is not needed for PIX; the payer is identified by email.
func (g *Gateway) CreateCustomer(context.Context, paymentdomain.CustomerRequest) (string, error) {
	return "", paymentdomain.ErrOperationUnsupported
}

func (g *Gateway) CreateSubAccount(context.Context, paymentdomain.SubAccountRequest) (paymentdomain.SubAccount, error) {
	return paymentdomain.SubAccount{}, paymentdomain.ErrOperationUnsupported
}

func (g *Gateway) CreatePayment(ctx context.Context, req paymentdomain.ChargeRequest) (paymentdomain.Charge, error) {
	request := payment.Request{
		TransactionAmount: float64(req.Amount) / 100,
		Description:       req.Description,
		PaymentMethodID:   methodPix,
		ExternalReference: req.ExternalReference,
		Payer:             &payment.PayerRequest{Email: req.PayerEmail},
	}
	if len(req.Splits) > 0 {
		request.Metadata = map[string]any{
			"payout_wallet_id": req.Splits[0].WalletID,
			"payout_value":     req.Splits[0].FixedValue,
		}
	}

	resp, err := g.client.Create(ctx, request)
	if err != nil {
		return paymentdomain.Charge{}, &paymentdomain.ProviderError{
			Provider:  ProviderName,
			Operation: "create_payment",
			Message:   err.Error(),
			Err:       err,
		}
	}

	data := transactionData(resp)
	return paymentdomain.Charge{
		ExternalID: strconv.Itoa(resp.ID),
		Status:     resp.Status,
		InvoiceURL: data.TicketURL,
		QRCodeURL:  data.QRCode,
	}, nil
}

// Lookup fetches the current provider status of a payment.
func (g *Gateway) Lookup(ctx context.Context, externalID string) (string, error) {
	id, err := strconv.Atoi(strings.TrimSpace(externalID))
	if err != nil {
		return "", paymentdomain.ErrInvalidPayload
	}
	resp, err := g.client.Get(ctx, id)
	if err != nil {
		return "", &paymentdomain.ProviderError{
			Provider:  ProviderName,
			Operation: "get_payment",
			Message:   err.Error(),
			Err:       err,
		}
	}
	return resp.Status, nil
}

type pixData struct {
	TicketURL string `json:"ticket_url"`
	QRCode    string `json:"qr_code"`
}

// transactionData reads the PIX fields from the response JSON so it does not
// depend on the SDK's nested response types.
func transactionData(resp *payment.Response) pixData {
	var shape struct {
		PointOfInteraction struct {
			TransactionData pixData `json:"transaction_data"`
		} `json:"point_of_interaction"`
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return pixData{}
	}
	_ = json.Unmarshal(raw, &shape)
	return shape.PointOfInteraction.TransactionData
}

var _ paymentdomain.Gateway = (*Gateway)(nil)
