package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/contentfilter"
	"github.com/smallbiznis/descomplaca/internal/dbtest"
	"github.com/smallbiznis/descomplaca/internal/events"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	orderrepository "github.com/smallbiznis/descomplaca/internal/order/repository"
	"github.com/smallbiznis/descomplaca/internal/proposal/domain"
	"github.com/smallbiznis/descomplaca/internal/proposal/repository"
	userrepository "github.com/smallbiznis/descomplaca/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc          domain.Service
	db           *gorm.DB
	node         *snowflake.Node
	orderRepo    orderdomain.Repository
	dispatcherID snowflake.ID
	ownerID      snowflake.ID
}

func setup(t *testing.T) fixture {
	db := dbtest.Open(t)
	node := dbtest.Node(t)
	orderRepo := orderrepository.Provide()
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		OrderRepo: orderRepo,
		UserRepo:  userrepository.Provide(),
		Publisher: &events.Recorder{},
	})

	now := time.Now().UTC()
	ownerID, dispatcherID := node.Generate(), node.Generate()
	dbtest.Exec(t, db,
		`INSERT INTO users (id, full_name, email, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?)`,
		ownerID, "Cliente", "c@x.com", "CLIENT", now, now,
		dispatcherID, "Despachante", "d@x.com", "DISPATCHER", now, now)

	return fixture{svc: svc, db: db, node: node, orderRepo: orderRepo, dispatcherID: dispatcherID, ownerID: ownerID}
}

func (f fixture) insertOrder(t *testing.T, status orderdomain.Status) snowflake.ID {
	t.Helper()
	id := f.node.Generate()
	now := time.Now().UTC()
	dbtest.Exec(t, f.db,
		`INSERT INTO orders (id, owner_id, status, vehicle_plate, service_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, f.ownerID, string(status), "ABC1234", "licenciamento", now, now)
	return id
}

func (f fixture) request(orderID snowflake.ID) domain.SubmitProposalRequest {
	return domain.SubmitProposalRequest{
		OrderID:       orderID.String(),
		DispatcherID:  f.dispatcherID.String(),
		FeeValue:      500,
		TaxValue:      200,
		EstimatedDays: 2,
		Description:   "Olá, sou credenciado e posso resolver em 2 dias.",
	}
}

func TestSubmitMovesOrderToProposalReceived(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	orderID := f.insertOrder(t, orderdomain.StatusOpen)

	proposal, err := f.svc.Submit(ctx, f.request(orderID))
	require.NoError(t, err)
	assert.Equal(t, int64(700), proposal.TotalValue)
	assert.False(t, proposal.IsAccepted)
	assert.Equal(t, "Olá, sou credenciado e posso resolver em 2 dias.", proposal.Description)

	order, err := f.orderRepo.FindByID(ctx, f.db, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusProposalReceived, order.Status)

	proposals, err := f.svc.ListForOrder(ctx, orderID.String())
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, int64(700), proposals[0].TotalValue)
}

func TestSubmitRejectsNonOpenOrder(t *testing.T) {
	f := setup(t)
	orderID := f.insertOrder(t, orderdomain.StatusPaid)

	_, err := f.svc.Submit(context.Background(), f.request(orderID))
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)
}

func TestSecondProposalFindsOrderClosed(t *testing.T) {
	f := setup(t)
	orderID := f.insertOrder(t, orderdomain.StatusOpen)

	_, err := f.svc.Submit(context.Background(), f.request(orderID))
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), f.request(orderID))
	assert.ErrorIs(t, err, domain.ErrOrderNotOpen)
}

func TestSubmitUnknownOrder(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Submit(context.Background(), f.request(f.node.Generate()))
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)
}

func TestSubmitBlocksLeakage(t *testing.T) {
	f := setup(t)
	orderID := f.insertOrder(t, orderdomain.StatusOpen)

	req := f.request(orderID)
	req.Description = "Me liga no 11999990000"
	_, err := f.svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contentfilter.ErrLeakageDetected))
	assert.EqualError(t, err, "Sensitive info (phone) detected in message")

	order, err := f.orderRepo.FindByID(context.Background(), f.db, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusOpen, order.Status)
}

func TestSubmitValidatesAmounts(t *testing.T) {
	f := setup(t)
	orderID := f.insertOrder(t, orderdomain.StatusOpen)

	req := f.request(orderID)
	req.FeeValue = -1
	_, err := f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidFee)

	req = f.request(orderID)
	req.EstimatedDays = -3
	_, err = f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidEstimatedDays)
}

func TestSubmitRequiresDispatcher(t *testing.T) {
	f := setup(t)
	orderID := f.insertOrder(t, orderdomain.StatusOpen)

	req := f.request(orderID)
	req.DispatcherID = f.ownerID.String()
	_, err := f.svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDispatcherNotFound)
}
