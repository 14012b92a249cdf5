package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/descomplaca/internal/dbtest"
	orderdomain "github.com/smallbiznis/descomplaca/internal/order/domain"
	orderrepository "github.com/smallbiznis/descomplaca/internal/order/repository"
	proposalrepository "github.com/smallbiznis/descomplaca/internal/proposal/repository"
	"github.com/smallbiznis/descomplaca/internal/review/domain"
	"github.com/smallbiznis/descomplaca/internal/review/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func setup(t *testing.T) fixture {
	db := dbtest.Open(t)
	node := dbtest.Node(t)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		OrderRepo:    orderrepository.Provide(),
		ProposalRepo: proposalrepository.Provide(),
	})
	return fixture{svc: svc, db: db, node: node}
}

// insertOrder creates an order and, when dispatcherID is set, an accepted proposal.
func (f fixture) insertOrder(t *testing.T, status orderdomain.Status, dispatcherID snowflake.ID) snowflake.ID {
	t.Helper()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	orderID := f.node.Generate()
	dbtest.Exec(t, f.db,
		`INSERT INTO orders (id, owner_id, status, vehicle_plate, service_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		orderID, f.node.Generate(), string(status), "ABC1234", "transferencia", now, now)
	if dispatcherID != 0 {
		dbtest.Exec(t, f.db,
			`INSERT INTO proposals (id, order_id, dispatcher_id, fee_value, tax_value, total_value, is_accepted, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.node.Generate(), orderID, f.node.Generate(), 100, 0, 100, false, now)
		dbtest.Exec(t, f.db,
			`INSERT INTO proposals (id, order_id, dispatcher_id, fee_value, tax_value, total_value, is_accepted, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.node.Generate(), orderID, dispatcherID, 200, 0, 200, true, now)
	}
	return orderID
}

func TestCreateReviewUsesAcceptedDispatcher(t *testing.T) {
	f := setup(t)
	dispatcherID := f.node.Generate()
	orderID := f.insertOrder(t, orderdomain.StatusFinished, dispatcherID)

	review, err := f.svc.Create(context.Background(), domain.CreateReviewRequest{
		OrderID: orderID.String(),
		Rating:  5,
		Comment: "  rápido e honesto ",
	})
	require.NoError(t, err)
	assert.Equal(t, dispatcherID, review.DispatcherID)
	assert.Equal(t, "rápido e honesto", review.Comment)
}

func TestCreateReviewRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	dispatcherID := f.node.Generate()

	paid := f.insertOrder(t, orderdomain.StatusPaid, dispatcherID)
	_, err := f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: paid.String(), Rating: 4})
	assert.ErrorIs(t, err, domain.ErrOrderNotFinished)

	finished := f.insertOrder(t, orderdomain.StatusFinished, dispatcherID)
	for _, rating := range []int{0, 6, -1} {
		_, err = f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: finished.String(), Rating: rating})
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}

	_, err = f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: f.node.Generate().String(), Rating: 3})
	assert.ErrorIs(t, err, orderdomain.ErrNotFound)

	_, err = f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: "x", Rating: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderID)

	unaccepted := f.insertOrder(t, orderdomain.StatusFinished, 0)
	_, err = f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: unaccepted.String(), Rating: 3})
	assert.ErrorIs(t, err, domain.ErrNoAcceptedProposal)
}

func TestListByDispatcherAverages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	dispatcherID := f.node.Generate()

	for _, rating := range []int{5, 4, 4} {
		orderID := f.insertOrder(t, orderdomain.StatusFinished, dispatcherID)
		_, err := f.svc.Create(ctx, domain.CreateReviewRequest{OrderID: orderID.String(), Rating: rating})
		require.NoError(t, err)
	}

	out, err := f.svc.ListByDispatcher(ctx, dispatcherID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, 4.3, out.AverageRating)

	empty, err := f.svc.ListByDispatcher(ctx, f.node.Generate().String())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Reviews)
}
