package refunds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	decisionApprove = "approve"
	decisionReject  = "reject"

	// HistoryReasonApproved is stamped on the order history row written by an approval.
	HistoryReasonApproved = "refund_approved"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type orderTransitioner interface {
	TransitionTx(ctx context.Context, tx *gorm.DB, input orders.TransitionInput) (*orders.TransitionResult, error)
}

type activityLogger interface {
	Log(ctx context.Context, entry activity.Entry)
}

// Service is the refund request and review workflow.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.RefundApproval, error)
	Approve(ctx context.Context, input ApproveInput) (*models.RefundApproval, error)
	Reject(ctx context.Context, input RejectInput) (*models.RefundApproval, error)
	List(ctx context.Context, status enums.RefundApprovalStatus) ([]models.RefundApproval, error)
	ListPending(ctx context.Context) ([]models.RefundApproval, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundApproval, error)
}

type service struct {
	repo     Repository
	orders   orderLookup
	machine  orderTransitioner
	tx       txRunner
	activity activityLogger
	logg     *logger.Logger
	metrics  *metrics.RefundMetrics
	now      func() time.Time
}

// NewService wires the refund workflow.
func NewService(repo Repository, orders orderLookup, machine orderTransitioner, tx txRunner, activity activityLogger, logg *logger.Logger, m *metrics.RefundMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("refunds repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order lookup required")
	}
	if machine == nil {
		return nil, fmt.Errorf("order state machine required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if activity == nil {
		return nil, fmt.Errorf("activity logger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		orders:   orders,
		machine:  machine,
		tx:       tx,
		activity: activity,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Request records a pending refund. The amount is not compared against what
// was paid; reviewers settle the final figure on approval.
func (s *service) Request(ctx context.Context, input RequestInput) (*models.RefundApproval, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.RequestedAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested amount must be greater than zero")
	}
	method := input.RefundMethod
	if method == "" {
		method = enums.RefundMethodOriginalPayment
	}
	if !method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid refund method %q", method)
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapNotFound(err, "order not found", "load order")
	}
	if input.OwnerID != nil && (order.UserID == nil || *order.UserID != *input.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	refund := &models.RefundApproval{
		ID:              uuid.New(),
		OrderID:         order.ID,
		RequestedAmount: input.RequestedAmount.Round(2),
		Status:          enums.RefundApprovalStatusPending,
		RefundMethod:    method,
		Reason:          trimmedOrNil(input.Reason),
		RequestedBy:     input.RequestedBy,
		RequestedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, refund); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund request")
	}

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityRefundRequested,
		EntityType: activity.EntityRefund,
		EntityID:   refund.ID,
		ActorID:    input.RequestedBy,
		Summary:    fmt.Sprintf("Refund requested for order %s", order.OrderNumber),
		Changes: types.JSONMap{
			"refund_id":        refund.ID.String(),
			"requested_amount": refund.RequestedAmount.InexactFloat64(),
		},
	})
	return refund, nil
}

// Approve settles a pending refund and moves its order to refunded in one
// transaction. A refund that already left pending yields CONFLICT.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.RefundApproval, error) {
	if input.RefundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}
	if input.ReviewedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reviewer identity missing")
	}
	if !input.ApprovedAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved amount must be greater than zero")
	}
	approved := input.ApprovedAmount.Round(2)
	notes := trimmedOrNil(input.ReviewerNotes)
	reviewer := input.ReviewedBy
	ctx = s.logg.WithRefundID(ctx, input.RefundID.String())

	var refund *models.RefundApproval
	var transition *orders.TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		refund, err = s.loadPending(ctx, repo, input.RefundID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		rows, err := repo.DecidePending(ctx, refund.ID, map[string]any{
			"status":          enums.RefundApprovalStatusApproved,
			"approved_amount": approved,
			"reviewed_by":     reviewer,
			"reviewed_at":     now,
			"reviewer_notes":  notes,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund")
		}
		if rows == 0 {
			return errNoLongerPending()
		}

		reason := HistoryReasonApproved
		transition, err = s.machine.TransitionTx(ctx, tx, orders.TransitionInput{
			OrderID:   refund.OrderID,
			ToState:   enums.OrderStateRefunded,
			ChangedBy: &reviewer,
			Reason:    &reason,
			Notes:     notes,
			Metadata: types.JSONMap{
				"refund_id":       refund.ID.String(),
				"approved_amount": approved.InexactFloat64(),
			},
		})
		if err != nil {
			return err
		}

		refund, err = repo.FindByID(ctx, refund.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload refund")
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveDecision(decisionApprove, resultFor(err))
		return nil, err
	}
	s.metrics.ObserveDecision(decisionApprove, metrics.ResultSuccess)
	s.logg.Info(s.logg.With(ctx, "order_id", refund.OrderID.String(), "approved_amount", approved.StringFixed(2)), "refund approved")

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityRefundApproved,
		EntityType: activity.EntityRefund,
		EntityID:   refund.ID,
		ActorID:    &reviewer,
		Summary:    fmt.Sprintf("Refund approved for order %s", transition.Order.OrderNumber),
		Changes: types.JSONMap{
			"refund_id":       refund.ID.String(),
			"approved_amount": approved.InexactFloat64(),
		},
	})
	return refund, nil
}

// Reject closes a pending refund. The order is left untouched.
func (s *service) Reject(ctx context.Context, input RejectInput) (*models.RefundApproval, error) {
	if input.RefundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund id required")
	}
	if input.ReviewedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reviewer identity missing")
	}
	reviewer := input.ReviewedBy
	ctx = s.logg.WithRefundID(ctx, input.RefundID.String())

	var refund *models.RefundApproval
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		refund, err = s.loadPending(ctx, repo, input.RefundID)
		if err != nil {
			return err
		}
		rows, err := repo.DecidePending(ctx, refund.ID, map[string]any{
			"status":         enums.RefundApprovalStatusRejected,
			"reviewed_by":    reviewer,
			"reviewed_at":    s.now().UTC(),
			"reviewer_notes": trimmedOrNil(input.ReviewerNotes),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund")
		}
		if rows == 0 {
			return errNoLongerPending()
		}
		refund, err = repo.FindByID(ctx, refund.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload refund")
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveDecision(decisionReject, resultFor(err))
		return nil, err
	}
	s.metrics.ObserveDecision(decisionReject, metrics.ResultSuccess)
	s.logg.Info(ctx, "refund rejected")

	orderRef := refund.OrderID.String()
	if refund.Order != nil {
		orderRef = refund.Order.OrderNumber
	}
	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityRefundRejected,
		EntityType: activity.EntityRefund,
		EntityID:   refund.ID,
		ActorID:    &reviewer,
		Summary:    fmt.Sprintf("Refund rejected for order %s", orderRef),
		Changes:    types.JSONMap{"refund_id": refund.ID.String()},
	})
	return refund, nil
}

func (s *service) List(ctx context.Context, status enums.RefundApprovalStatus) ([]models.RefundApproval, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid refund status %q", status)
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list refunds")
	}
	return rows, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.RefundApproval, error) {
	return s.List(ctx, enums.RefundApprovalStatusPending)
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundApproval, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order refunds")
	}
	return rows, nil
}

func (s *service) loadPending(ctx context.Context, repo Repository, id uuid.UUID) (*models.RefundApproval, error) {
	refund, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "refund not found", "load refund")
	}
	if refund.Status != enums.RefundApprovalStatusPending {
		return nil, errNoLongerPending().WithDetails(map[string]any{"status": refund.Status})
	}
	return refund, nil
}

func errNoLongerPending() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, "refund is no longer pending")
}

func resultFor(err error) string {
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) || pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		return metrics.ResultConflict
	}
	return metrics.ResultError
}

func mapNotFound(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
