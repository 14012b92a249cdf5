package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	"github.com/smallbiznis/descomplaca/internal/user/domain"
	pkgdb "github.com/smallbiznis/descomplaca/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Gateway paymentdomain.Gateway
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	gateway paymentdomain.Gateway
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("user.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		gateway: p.Gateway,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.User{}, domain.ErrInvalidName
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	role := domain.RoleClient
	if raw := strings.ToUpper(strings.TrimSpace(req.Role)); raw != "" {
		parsed, ok := domain.ParseRole(raw)
		if !ok {
			return domain.User{}, domain.ErrInvalidRole
		}
		role = parsed
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            s.genID.Generate(),
		FullName:      name,
		Email:         email,
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		TaxID:         digitsOnly(req.TaxID),
		Role:          role,
		LicenseNumber: trimmedPtr(req.LicenseNumber),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

// OnboardDispatcher opens a provider sub-account for the dispatcher and
// stores its wallet id so checkouts can split the payout to it.
func (s *Service) OnboardDispatcher(ctx context.Context, req domain.OnboardDispatcherRequest) (domain.User, error) {
	user, err := s.GetByID(ctx, req.UserID)
	if err != nil {
		return domain.User{}, err
	}
	if user.Role != domain.RoleDispatcher {
		return domain.User{}, domain.ErrNotDispatcher
	}
	if user.WalletID() != "" {
		return domain.User{}, domain.ErrAlreadyOnboarded
	}
	if s.gateway == nil {
		return domain.User{}, paymentdomain.ErrProviderNotFound
	}

	account, err := s.gateway.CreateSubAccount(ctx, paymentdomain.SubAccountRequest{
		Name:          user.FullName,
		Email:         user.Email,
		TaxID:         user.TaxID,
		Phone:         user.PhoneNumber,
		PostalCode:    strings.TrimSpace(req.PostalCode),
		Address:       strings.TrimSpace(req.Address),
		AddressNumber: strings.TrimSpace(req.AddressNumber),
		BirthDate:     strings.TrimSpace(req.BirthDate),
	})
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.SetProviderWallet(ctx, s.db, user.ID, account.WalletID, now); err != nil {
		return domain.User{}, err
	}
	s.log.Info("dispatcher onboarded",
		zap.String("user_id", user.ID.String()),
		zap.String("provider", s.gateway.Provider()),
	)

	wallet := account.WalletID
	user.ProviderWalletID = &wallet
	user.UpdatedAt = now
	return user, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
