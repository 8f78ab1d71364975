package refunds

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn   *gorm.DB
	orders orders.Repository
	svc    Service
	audit  *recordingActivity
}

func newFixture(t *testing.T, machine orderTransitioner) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	audit := &recordingActivity{}
	orderRepo := orders.NewRepository(conn)
	tx := db.NewFromConn(conn)

	if machine == nil {
		orderSvc, err := orders.NewService(orderRepo, tx, audit, logg, nil)
		require.NoError(t, err)
		machine = orderSvc
	}
	svc, err := NewService(NewRepository(conn), orderRepo, machine, tx, audit, logg, metrics.NewRefundMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	return &fixture{conn: conn, orders: orderRepo, svc: svc, audit: audit}
}

func (f *fixture) seedRefund(t *testing.T, order *models.Order, amount int64, requestedAt time.Time) *models.RefundApproval {
	t.Helper()
	refund := &models.RefundApproval{
		ID:              uuid.New(),
		OrderID:         order.ID,
		RequestedAmount: decimal.NewFromInt(amount),
		Status:          enums.RefundApprovalStatusPending,
		RefundMethod:    enums.RefundMethodOriginalPayment,
		RequestedAt:     requestedAt,
	}
	require.NoError(t, f.conn.Omit("Order").Create(refund).Error)
	return refund
}

func deliveredOrder(o *models.Order) {
	o.Status = enums.OrderStatusDelivered
	o.CurrentState = enums.OrderStateDelivered
	o.PaymentStatus = enums.PaymentStatusSucceeded
}

func TestApproveRefundsOrderWithHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, deliveredOrder)
	refund := f.seedRefund(t, order, 60, time.Now().UTC())
	admin := uuid.New()
	notes := "approved test"

	approved, err := f.svc.Approve(ctx, ApproveInput{
		RefundID:       refund.ID,
		ApprovedAmount: decimal.NewFromInt(50),
		ReviewedBy:     admin,
		ReviewerNotes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RefundApprovalStatusApproved, approved.Status)
	require.True(t, approved.ApprovedAmount.Valid)
	assert.True(t, approved.ApprovedAmount.Decimal.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, admin, *approved.ReviewedBy)
	assert.NotNil(t, approved.ReviewedAt)

	reloaded, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStateRefunded, reloaded.CurrentState)
	assert.Equal(t, enums.OrderStatusRefunded, reloaded.Status)
	assert.Equal(t, enums.PaymentStatusRefunded, reloaded.PaymentStatus)
	assert.NotNil(t, reloaded.RefundedAt)

	history, err := f.orders.ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, enums.OrderStateDelivered, *history[0].FromState)
	assert.Equal(t, enums.OrderStateRefunded, history[0].ToState)
	assert.Equal(t, HistoryReasonApproved, *history[0].Reason)
	assert.Equal(t, refund.ID.String(), history[0].Metadata["refund_id"])
	assert.Equal(t, 50.0, history[0].Metadata["approved_amount"])

	require.NotEmpty(t, f.audit.entries)
	last := f.audit.entries[len(f.audit.entries)-1]
	assert.Equal(t, enums.ActivityRefundApproved, last.Type)
	assert.Equal(t, 50.0, last.Changes["approved_amount"])
	assert.Equal(t, activity.EntityRefund, last.EntityType)
}

func TestRefundLeavesPendingOnlyOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, deliveredOrder)
	refund := f.seedRefund(t, order, 50, time.Now().UTC())
	admin := uuid.New()

	_, err := f.svc.Approve(ctx, ApproveInput{RefundID: refund.ID, ApprovedAmount: decimal.NewFromInt(50), ReviewedBy: admin})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, ApproveInput{RefundID: refund.ID, ApprovedAmount: decimal.NewFromInt(50), ReviewedBy: admin})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = f.svc.Reject(ctx, RejectInput{RefundID: refund.ID, ReviewedBy: admin})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	history, err := f.orders.ListHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRejectLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, deliveredOrder)
	refund := f.seedRefund(t, order, 50, time.Now().UTC())
	notes := "outside return window"

	rejected, err := f.svc.Reject(ctx, RejectInput{RefundID: refund.ID, ReviewedBy: uuid.New(), ReviewerNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, enums.RefundApprovalStatusRejected, rejected.Status)
	assert.False(t, rejected.ApprovedAmount.Valid)
	assert.Equal(t, notes, *rejected.ReviewerNotes)

	reloaded, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStateDelivered, reloaded.CurrentState)
	assert.Equal(t, enums.PaymentStatusSucceeded, reloaded.PaymentStatus)

	history, err := f.orders.ListHistory(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	last := f.audit.entries[len(f.audit.entries)-1]
	assert.Equal(t, enums.ActivityRefundRejected, last.Type)
}

func TestApproveRollsBackWhenOrderTransitionFails(t *testing.T) {
	f := newFixture(t, failingMachine{})
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, deliveredOrder)
	refund := f.seedRefund(t, order, 50, time.Now().UTC())

	_, err := f.svc.Approve(ctx, ApproveInput{RefundID: refund.ID, ApprovedAmount: decimal.NewFromInt(50), ReviewedBy: uuid.New()})
	require.Error(t, err)

	var stored models.RefundApproval
	require.NoError(t, f.conn.First(&stored, "id = ?", refund.ID).Error)
	assert.Equal(t, enums.RefundApprovalStatusPending, stored.Status)
	assert.False(t, stored.ApprovedAmount.Valid)
	assert.Empty(t, f.audit.entries)
}

func TestApproveUsesLegacyStatusWhenStateMissing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, nil)
	require.NoError(t, f.conn.Exec("UPDATE orders SET current_state = '', status = 'shipped' WHERE id = ?", order.ID).Error)
	refund := f.seedRefund(t, order, 50, time.Now().UTC())

	_, err := f.svc.Approve(ctx, ApproveInput{RefundID: refund.ID, ApprovedAmount: decimal.NewFromInt(50), ReviewedBy: uuid.New()})
	require.NoError(t, err)

	history, err := f.orders.ListHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, enums.OrderStateShipped, *history[0].FromState)
}

func TestApproveValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, ApproveInput{RefundID: uuid.New(), ApprovedAmount: decimal.Zero, ReviewedBy: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Approve(ctx, ApproveInput{RefundID: uuid.New(), ApprovedAmount: decimal.NewFromInt(-5), ReviewedBy: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Approve(ctx, ApproveInput{RefundID: uuid.New(), ApprovedAmount: decimal.NewFromInt(5), ReviewedBy: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestConcurrentDecisionIsConflict(t *testing.T) {
	refundID := uuid.New()
	repo := &stubRepo{refund: &models.RefundApproval{ID: refundID, OrderID: uuid.New(), Status: enums.RefundApprovalStatusPending}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubOrders{}, failingMachine{}, stubTxRunner{}, &recordingActivity{}, logg, nil)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), RejectInput{RefundID: refundID, ReviewedBy: uuid.New()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Approve(context.Background(), ApproveInput{RefundID: refundID, ApprovedAmount: decimal.NewFromInt(1), ReviewedBy: uuid.New()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRequestRefund(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	customer := uuid.New()
	order := dbtest.SeedOrder(t, f.conn, func(o *models.Order) {
		deliveredOrder(o)
		o.UserID = &customer
	})
	reason := "  arrived damaged "

	refund, err := f.svc.Request(ctx, RequestInput{
		OrderID:         order.ID,
		RequestedAmount: decimal.RequireFromString("250.005"),
		RequestedBy:     &customer,
		OwnerID:         &customer,
		Reason:          &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RefundApprovalStatusPending, refund.Status)
	assert.Equal(t, enums.RefundMethodOriginalPayment, refund.RefundMethod)
	assert.Equal(t, "arrived damaged", *refund.Reason)
	assert.True(t, refund.RequestedAmount.Equal(decimal.RequireFromString("250.01")))

	stranger := uuid.New()
	_, err = f.svc.Request(ctx, RequestInput{OrderID: order.ID, RequestedAmount: decimal.NewFromInt(1), OwnerID: &stranger})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Request(ctx, RequestInput{OrderID: order.ID, RequestedAmount: decimal.Zero})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Request(ctx, RequestInput{OrderID: order.ID, RequestedAmount: decimal.NewFromInt(1), RefundMethod: "cheque"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Request(ctx, RequestInput{OrderID: uuid.New(), RequestedAmount: decimal.NewFromInt(1)})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPendingNewestFirst(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, f.conn, deliveredOrder)
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	older := f.seedRefund(t, order, 10, base)
	newer := f.seedRefund(t, order, 20, base.Add(time.Hour))
	decided := f.seedRefund(t, order, 30, base.Add(2*time.Hour))
	_, err := f.svc.Reject(ctx, RejectInput{RefundID: decided.ID, ReviewedBy: uuid.New()})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer.ID, pending[0].ID)
	assert.Equal(t, older.ID, pending[1].ID)
	require.NotNil(t, pending[0].Order)
	assert.Equal(t, order.OrderNumber, pending[0].Order.OrderNumber)

	all, err := f.svc.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.List(ctx, "archived")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type recordingActivity struct {
	entries []activity.Entry
}

func (r *recordingActivity) Log(ctx context.Context, entry activity.Entry) {
	r.entries = append(r.entries, entry)
}

type failingMachine struct{}

func (failingMachine) TransitionTx(ctx context.Context, tx *gorm.DB, input orders.TransitionInput) (*orders.TransitionResult, error) {
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("orders table locked"), "update order state")
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrders struct{}

func (stubOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubRepo struct {
	Repository
	refund *models.RefundApproval
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.RefundApproval, error) {
	clone := *s.refund
	return &clone, nil
}

// DecidePending simulates a reviewer who won the race.
func (s *stubRepo) DecidePending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return 0, nil
}
