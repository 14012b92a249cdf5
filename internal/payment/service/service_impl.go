package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/clock"
	"github.com/smallbiznis/descomplaca/internal/config"
	"github.com/smallbiznis/descomplaca/internal/events"
	ledgerdomain "github.com/smallbiznis/descomplaca/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	"github.com/smallbiznis/descomplaca/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	proposaldomain "github.com/smallbiznis/descomplaca/internal/proposal/domain"
	"github.com/smallbiznis/descomplaca/internal/ratelimit"
	userdomain "github.com/smallbiznis/descomplaca/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Cfg          config.Config
	Clock        clock.Clock `optional:"true"`
	Repo         paymentdomain.Repository
	Gateway      paymentdomain.Gateway `optional:"true"`
	Registry     *adapters.Registry
	LedgerSvc    ledgerdomain.Service
	ProposalRepo proposaldomain.Repository
	OrderRepo    orderdomain.Repository
	UserRepo     userdomain.Repository
	Publisher    events.Publisher               `optional:"true"`
	Limiter      *ratelimit.MarketplaceLimiter  `optional:"true"`
	Metrics      *obsmetrics.MarketplaceMetrics `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics            `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	cfg          config.PaymentConfig
	production   bool
	clock        clock.Clock
	repo         paymentdomain.Repository
	gateway      paymentdomain.Gateway
	registry     *adapters.Registry
	ledgerSvc    ledgerdomain.Service
	proposalRepo proposaldomain.Repository
	orderRepo    orderdomain.Repository
	userRepo     userdomain.Repository
	publisher    events.Publisher
	limiter      *ratelimit.MarketplaceLimiter
	metrics      *obsmetrics.MarketplaceMetrics
	obsMetrics   *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		cfg:          p.Cfg.Payment,
		production:   p.Cfg.IsProduction(),
		clock:        clk,
		repo:         p.Repo,
		gateway:      p.Gateway,
		registry:     p.Registry,
		ledgerSvc:    p.LedgerSvc,
		proposalRepo: p.ProposalRepo,
		orderRepo:    p.OrderRepo,
		userRepo:     p.UserRepo,
		publisher:    publisher,
		limiter:      p.Limiter,
		metrics:      p.Metrics,
		obsMetrics:   p.ObsMetrics,
	}
}

// CreateCheckout opens a PIX charge for the proposal total and splits the
// payout to the dispatcher's wallet.
func (s *Service) CreateCheckout(ctx context.Context, proposalID string) (paymentdomain.CheckoutResult, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(proposalID))
	if err != nil || id == 0 {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrInvalidProposalID
	}
	if s.gateway == nil {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrProviderNotFound
	}
	provider := s.gateway.Provider()

	proposal, err := s.proposalRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return paymentdomain.CheckoutResult{}, err
	}
	if proposal == nil {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrProposalNotFound
	}
	if proposal.IsAccepted {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrProposalAlreadyPaid
	}

	token, locked, err := s.limiter.LockCheckout(ctx, int64(proposal.ID))
	if err != nil {
		return paymentdomain.CheckoutResult{}, err
	}
	if !locked {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrCheckoutInProgress
	}
	defer func() {
		if err := s.limiter.ReleaseCheckout(context.WithoutCancel(ctx), int64(proposal.ID), token); err != nil {
			s.log.Warn("release checkout lock failed", zap.String("proposal_id", proposal.ID.String()), zap.Error(err))
		}
	}()

	order, err := s.orderRepo.FindByID(ctx, s.db, proposal.OrderID)
	if err != nil {
		return paymentdomain.CheckoutResult{}, err
	}
	if order == nil {
		return paymentdomain.CheckoutResult{}, orderdomain.ErrNotFound
	}
	client, err := s.userRepo.FindByID(ctx, s.db, order.OwnerID)
	if err != nil {
		return paymentdomain.CheckoutResult{}, err
	}
	if client == nil {
		return paymentdomain.CheckoutResult{}, paymentdomain.ErrClientNotFound
	}
	walletID, err := s.dispatcherWallet(ctx, proposal.DispatcherID)
	if err != nil {
		return paymentdomain.CheckoutResult{}, err
	}

	split := ledgerdomain.ComputeSplit(proposal.FeeValue, proposal.TaxValue, s.cfg.CommissionRate)

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	customerID, err := s.ensureCustomer(callCtx, client)
	if err != nil {
		s.recordCheckout(ctx, provider, obsmetrics.OutcomeFailed)
		return paymentdomain.CheckoutResult{}, err
	}

	now := s.clock.Now().UTC()
	started := time.Now()
	charge, err := s.gateway.CreatePayment(callCtx, paymentdomain.ChargeRequest{
		CustomerID:        customerID,
		PayerEmail:        client.Email,
		BillingType:       paymentdomain.BillingTypePix,
		Amount:            split.Total,
		DueDate:           now.AddDate(0, 0, s.dueDays()),
		Description:       fmt.Sprintf("Serviço %s - placa %s", order.ServiceType, order.VehiclePlate),
		ExternalReference: proposal.ID.String(),
		Splits:            []paymentdomain.SplitRule{{WalletID: walletID, FixedValue: split.Payout}},
	})
	s.obsMetrics.ObserveProviderCall(ctx, provider, "create_payment", time.Since(started))
	if err != nil {
		s.recordCheckout(ctx, provider, obsmetrics.OutcomeFailed)
		s.log.Warn("provider rejected checkout",
			zap.String("proposal_id", proposal.ID.String()),
			zap.String("provider", provider),
			zap.Error(err),
		)
		return paymentdomain.CheckoutResult{}, err
	}

	payment := paymentdomain.Payment{
		ID:              s.genID.Generate(),
		ProposalID:      proposal.ID,
		Provider:        provider,
		ExternalID:      charge.ExternalID,
		Status:          charge.Status,
		Amount:          split.Total,
		CommissionValue: split.Commission,
		PayoutValue:     split.Payout,
		InvoiceURL:      charge.InvoiceURL,
		QRCodeURL:       charge.QRCodeURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		s.metrics.RecordDBError("payment_insert", err)
		return paymentdomain.CheckoutResult{}, err
	}

	s.recordCheckout(ctx, provider, obsmetrics.OutcomeCreated)
	s.log.Info("checkout created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("provider", provider),
		zap.Int64("amount", split.Total),
		zap.Int64("commission", split.Commission),
	)

	return paymentdomain.CheckoutResult{
		PaymentID:  payment.ID,
		PaymentURL: charge.InvoiceURL,
		QRCode:     charge.QRCodeURL,
	}, nil
}

// HandleNotification reconciles a provider webhook. A payment reaches PAID
// at most once; repeated deliveries are acknowledged without side effects.
func (s *Service) HandleNotification(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	adapter, err := s.registry.Adapter(provider)
	if err != nil {
		return err
	}
	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.recordNotification(ctx, provider, "", obsmetrics.OutcomeRejected)
		return err
	}
	notification, err := adapter.Parse(ctx, payload)
	if err != nil {
		s.recordNotification(ctx, provider, "", obsmetrics.OutcomeRejected)
		return err
	}

	now := s.clock.Now().UTC()
	if _, err := s.repo.InsertEvent(ctx, s.db, &paymentdomain.EventRecord{
		ID:                s.genID.Generate(),
		Provider:          notification.Provider,
		ProviderEventID:   notification.ProviderEventID,
		EventType:         notification.EventType,
		ExternalPaymentID: notification.ExternalPaymentID,
		Payload:           datatypes.JSON(payload),
		ReceivedAt:        now,
	}); err != nil {
		s.metrics.RecordDBError("payment_event_insert", err)
		return err
	}

	if !notification.Confirmed {
		s.recordNotification(ctx, provider, notification.EventType, obsmetrics.OutcomeIgnored)
		return nil
	}

	payment, err := s.repo.FindByExternalID(ctx, s.db, notification.Provider, notification.ExternalPaymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		s.recordNotification(ctx, provider, notification.EventType, obsmetrics.OutcomeUnmatched)
		s.log.Warn("notification for unknown payment",
			zap.String("provider", provider),
			zap.String("external_id", notification.ExternalPaymentID),
		)
		return nil
	}

	var (
		duplicate bool
		orderID   snowflake.ID
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changed, err := s.repo.MarkPaid(ctx, tx, payment.Provider, payment.ExternalID, now)
		if err != nil {
			return err
		}
		if !changed {
			duplicate = true
			return nil
		}

		proposal, err := s.proposalRepo.FindByID(ctx, tx, payment.ProposalID)
		if err != nil {
			return err
		}
		if proposal == nil {
			return paymentdomain.ErrProposalNotFound
		}
		if err := s.proposalRepo.MarkAccepted(ctx, tx, proposal.ID); err != nil {
			return err
		}
		if err := s.orderRepo.SetStatus(ctx, tx, proposal.OrderID, orderdomain.StatusPaid, now); err != nil {
			return err
		}
		orderID = proposal.OrderID

		split := ledgerdomain.Split{
			Total:      payment.Amount,
			Commission: payment.CommissionValue,
			Payout:     payment.PayoutValue,
		}
		return s.ledgerSvc.PostPaymentTx(ctx, tx, payment.ID, split, now)
	})
	if err != nil {
		s.metrics.RecordDBError("payment_reconcile", err)
		return err
	}

	if duplicate {
		s.recordNotification(ctx, provider, notification.EventType, obsmetrics.OutcomeDuplicate)
		s.log.Info("duplicate payment confirmation", zap.String("payment_id", payment.ID.String()))
		return nil
	}

	s.recordNotification(ctx, provider, notification.EventType, obsmetrics.OutcomePaid)
	s.publisher.Publish(ctx, events.EventOrderPaid, int64(orderID), map[string]any{
		"payment_id":  payment.ID.String(),
		"proposal_id": payment.ProposalID.String(),
		"amount":      payment.Amount,
	})
	s.log.Info("payment confirmed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("provider", provider),
	)
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (paymentdomain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || paymentID == 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrPaymentNotFound
	}
	payment, err := s.repo.FindByID(ctx, s.db, paymentID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if payment == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrPaymentNotFound
	}
	return *payment, nil
}

// dispatcherWallet falls back to the sandbox wallet outside production.
func (s *Service) dispatcherWallet(ctx context.Context, dispatcherID snowflake.ID) (string, error) {
	dispatcher, err := s.userRepo.FindByID(ctx, s.db, dispatcherID)
	if err != nil {
		return "", err
	}
	if dispatcher != nil && dispatcher.WalletID() != "" {
		return dispatcher.WalletID(), nil
	}
	if !s.production && s.cfg.SandboxWalletID != "" {
		return s.cfg.SandboxWalletID, nil
	}
	return "", paymentdomain.ErrDispatcherNotOnboarded
}

// ensureCustomer returns the client's provider customer, creating it on the
// first checkout. Providers without customers yield "".
func (s *Service) ensureCustomer(ctx context.Context, client *userdomain.User) (string, error) {
	if id := client.CustomerID(); id != "" {
		return id, nil
	}
	if !s.production && client.TaxID == "" && s.cfg.SandboxCustomerID != "" {
		return s.cfg.SandboxCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, paymentdomain.CustomerRequest{
		Name:  client.FullName,
		TaxID: client.TaxID,
		Email: client.Email,
		Phone: client.PhoneNumber,
	})
	if errors.Is(err, paymentdomain.ErrOperationUnsupported) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetProviderCustomer(ctx, s.db, client.ID, customerID, s.clock.Now().UTC()); err != nil {
		return "", err
	}
	return customerID, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) dueDays() int {
	if s.cfg.DueDays <= 0 {
		return 1
	}
	return s.cfg.DueDays
}

func (s *Service) recordCheckout(ctx context.Context, provider, outcome string) {
	s.metrics.IncCheckout(provider, outcome)
	s.obsMetrics.RecordCheckout(ctx, provider, outcome)
}

func (s *Service) recordNotification(ctx context.Context, provider, eventType, outcome string) {
	s.metrics.IncReconciliation(provider, outcome)
	s.obsMetrics.RecordNotification(ctx, provider, eventType, outcome)
}
