package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type activityLogger interface {
	Log(ctx context.Context, entry activity.Entry)
}

// Service is the order state machine plus the admin read/edit surface.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
	// TransitionTx runs the transition inside a caller-owned transaction.
	TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*TransitionResult, error)
	Hold(ctx context.Context, input HoldInput) (*TransitionResult, error)
	Release(ctx context.Context, input ReleaseInput) (*TransitionResult, error)
	UpdateNotes(ctx context.Context, input NotesInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[models.Order], error)
	History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStateHistory, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	activity activityLogger
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, activity activityLogger, logg *logger.Logger, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
		tx:       tx,
		activity: activity,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.TransitionTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	changes := types.JSONMap{"to_state": input.ToState}
	if result.History.FromState != nil {
		changes["from_state"] = *result.History.FromState
	}
	if input.Reason != nil {
		changes["reason"] = *input.Reason
	}
	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityOrderStatusChanged,
		EntityType: activity.EntityOrder,
		EntityID:   input.OrderID,
		ActorID:    input.ChangedBy,
		Summary:    fmt.Sprintf("Order %s moved to %s", result.Order.OrderNumber, input.ToState),
		Changes:    changes,
	})
	return result, nil
}

func (s *service) TransitionTx(ctx context.Context, tx *gorm.DB, input TransitionInput) (*TransitionResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)
	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())

	order, err := repo.FindByID(ctx, input.OrderID)
	if err != nil {
		s.metrics.ObserveTransition("", input.ToState.String(), metrics.ResultError)
		return nil, mapRepoErr(err, "load order")
	}

	current := order.EffectiveState()
	if input.FromState != nil && *input.FromState != current {
		s.metrics.ObserveTransition(current.String(), input.ToState.String(), metrics.ResultConflict)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed since it was read").
			WithDetails(map[string]any{
				"expected": *input.FromState,
				"actual":   current,
			})
	}
	if current.IsTerminal() && !input.ToState.IsTerminal() {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"from_state": current,
			"to_state":   input.ToState,
		}), "order reopened from terminal state")
	}

	now := s.now().UTC()
	updates := transitionUpdates(order, input.ToState, now)
	for k, v := range input.extra {
		updates[k] = v
	}

	rows, err := repo.CompareAndSetState(ctx, order.ID, order.CurrentState, updates)
	if err != nil {
		s.metrics.ObserveTransition(current.String(), input.ToState.String(), metrics.ResultError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order state")
	}
	if rows == 0 {
		s.metrics.ObserveTransition(current.String(), input.ToState.String(), metrics.ResultConflict)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order state changed concurrently").
			WithDetails(map[string]any{"expected": current})
	}

	from := current
	history := &models.OrderStateHistory{
		ID:        uuid.New(),
		OrderID:   order.ID,
		FromState: &from,
		ToState:   input.ToState,
		ChangedBy: input.ChangedBy,
		Reason:    trimmedOrNil(input.Reason),
		Notes:     trimmedOrNil(input.Notes),
		Metadata:  input.Metadata.Clone(),
		ChangedAt: now,
	}
	if err := repo.AppendHistory(ctx, history); err != nil {
		s.metrics.ObserveTransition(current.String(), input.ToState.String(), metrics.ResultError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
	}

	updated, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, mapRepoErr(err, "reload order")
	}

	s.metrics.ObserveTransition(current.String(), input.ToState.String(), metrics.ResultSuccess)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"from_state": current,
		"to_state":   input.ToState,
	}), "order state transitioned")
	return &TransitionResult{Order: updated, History: history}, nil
}

func (s *service) Hold(ctx context.Context, input HoldInput) (*TransitionResult, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hold reason required")
	}
	if input.Until != nil && !input.Until.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hold until must be in the future")
	}

	extra := map[string]any{"hold_reason": reason, "hold_until": nil}
	metadata := types.JSONMap{}
	if input.Until != nil {
		until := input.Until.UTC()
		extra["hold_until"] = until
		metadata["hold_until"] = until.Format(time.RFC3339)
	}

	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.TransitionTx(ctx, tx, TransitionInput{
			OrderID:   input.OrderID,
			ToState:   enums.OrderStateOnHold,
			ChangedBy: input.ActorID,
			Reason:    &reason,
			Metadata:  metadata,
			extra:     extra,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityOrderHeld,
		EntityType: activity.EntityOrder,
		EntityID:   input.OrderID,
		ActorID:    input.ActorID,
		Summary:    fmt.Sprintf("Order %s placed on hold", result.Order.OrderNumber),
		Changes:    types.JSONMap{"hold_reason": reason},
	})
	return result, nil
}

func (s *service) Release(ctx context.Context, input ReleaseInput) (*TransitionResult, error) {
	from := enums.OrderStateOnHold
	var result *TransitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.TransitionTx(ctx, tx, TransitionInput{
			OrderID:   input.OrderID,
			FromState: &from,
			ToState:   enums.OrderStateProcessing,
			ChangedBy: input.ActorID,
			Notes:     input.Notes,
			extra:     map[string]any{"hold_reason": nil, "hold_until": nil},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityOrderReleased,
		EntityType: activity.EntityOrder,
		EntityID:   input.OrderID,
		ActorID:    input.ActorID,
		Summary:    fmt.Sprintf("Order %s released from hold", result.Order.OrderNumber),
	})
	return result, nil
}

func (s *service) UpdateNotes(ctx context.Context, input NotesInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	updates := map[string]any{}
	changes := types.JSONMap{}
	if n := input.InternalNotes.Normalized(); n.Valid {
		updates["internal_notes"] = n.Value
		changes["internal_notes"] = n.Value
	}
	if n := input.CustomerNotes.Normalized(); n.Valid {
		updates["customer_notes"] = n.Value
		changes["customer_notes"] = n.Value
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no note changes supplied")
	}

	rows, err := s.repo.UpdateFields(ctx, input.OrderID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order notes")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, mapRepoErr(err, "reload order")
	}

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityOrderNotesUpdated,
		EntityType: activity.EntityOrder,
		EntityID:   input.OrderID,
		ActorID:    input.ActorID,
		Summary:    fmt.Sprintf("Notes updated on order %s", order.OrderNumber),
		Changes:    changes,
	})
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		return nil, mapRepoErr(err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[models.Order], error) {
	if filters.State != nil && !filters.State.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid state filter %q", *filters.State)
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

func (s *service) History(ctx context.Context, orderID uuid.UUID) ([]models.OrderStateHistory, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.repo.FindByID(ctx, orderID); err != nil {
		return nil, mapRepoErr(err, "load order")
	}
	rows, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}
	return rows, nil
}

func mapRepoErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
