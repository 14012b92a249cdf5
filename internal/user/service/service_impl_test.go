package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/descomplaca/internal/dbtest"
	paymentdomain "github.com/smallbiznis/descomplaca/internal/payment/domain"
	"github.com/smallbiznis/descomplaca/internal/user/domain"
	"github.com/smallbiznis/descomplaca/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Provider() string { return "asaas" }

func (m *mockGateway) CreateCustomer(ctx context.Context, req paymentdomain.CustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) CreatePayment(ctx context.Context, req paymentdomain.ChargeRequest) (paymentdomain.Charge, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(paymentdomain.Charge), args.Error(1)
}

func (m *mockGateway) CreateSubAccount(ctx context.Context, req paymentdomain.SubAccountRequest) (paymentdomain.SubAccount, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(paymentdomain.SubAccount), args.Error(1)
}

func newTestService(t *testing.T, gw paymentdomain.Gateway) domain.Service {
	return New(Params{
		DB:      dbtest.Open(t),
		Log:     zap.NewNop(),
		GenID:   dbtest.Node(t),
		Repo:    repository.Provide(),
		Gateway: gw,
	})
}

func TestCreateUser(t *testing.T) {
	svc := newTestService(t, &mockGateway{})
	ctx := context.Background()

	user, err := svc.Create(ctx, domain.CreateUserRequest{
		FullName: "Ana Souza",
		Email:    " Ana@Example.com ",
		TaxID:    "123.456.789-00",
		Role:     "dispatcher",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "12345678900", user.TaxID)
	assert.Equal(t, domain.RoleDispatcher, user.Role)

	got, err := svc.GetByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.FullName, got.FullName)

	_, err = svc.Create(ctx, domain.CreateUserRequest{FullName: "Outra", Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newTestService(t, &mockGateway{})
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateUserRequest{Email: "a@b.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateUserRequest{FullName: "A", Email: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateUserRequest{FullName: "A", Email: "a@b.com", Role: "OWNER"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t, &mockGateway{})

	_, err := svc.GetByID(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestOnboardDispatcherStoresWallet(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(t, gw)
	ctx := context.Background()

	user, err := svc.Create(ctx, domain.CreateUserRequest{FullName: "Despachante", Email: "d@x.com", Role: "DISPATCHER"})
	require.NoError(t, err)

	gw.On("CreateSubAccount", mock.Anything, mock.MatchedBy(func(req paymentdomain.SubAccountRequest) bool {
		return req.Email == "d@x.com" && req.PostalCode == "29100000"
	})).Return(paymentdomain.SubAccount{ID: "acc_1", WalletID: "wallet_1"}, nil).Once()

	onboarded, err := svc.OnboardDispatcher(ctx, domain.OnboardDispatcherRequest{UserID: user.ID.String(), PostalCode: "29100000"})
	require.NoError(t, err)
	assert.Equal(t, "wallet_1", onboarded.WalletID())

	stored, err := svc.GetByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "wallet_1", stored.WalletID())

	_, err = svc.OnboardDispatcher(ctx, domain.OnboardDispatcherRequest{UserID: user.ID.String()})
	assert.ErrorIs(t, err, domain.ErrAlreadyOnboarded)
	gw.AssertExpectations(t)
}

func TestOnboardRejectsClients(t *testing.T) {
	svc := newTestService(t, &mockGateway{})
	ctx := context.Background()

	user, err := svc.Create(ctx, domain.CreateUserRequest{FullName: "Cliente", Email: "c@x.com"})
	require.NoError(t, err)

	_, err = svc.OnboardDispatcher(ctx, domain.OnboardDispatcherRequest{UserID: user.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotDispatcher)
}
