package orders

import (
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

func (in TransitionInput) validate() error {
	if in.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !in.ToState.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid target state %q", in.ToState)
	}
	if in.FromState != nil && !in.FromState.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid from state %q", *in.FromState)
	}
	return nil
}

// transitionUpdates builds the column set written when order moves to `to`.
// Milestone timestamps are only stamped once; refunded_at always reflects the
// latest refund.
func transitionUpdates(order *models.Order, to enums.OrderState, now time.Time) map[string]any {
	updates := map[string]any{
		"current_state": to,
	}
	if status, ok := to.LegacyStatus(); ok {
		updates["status"] = status
	}

	switch to {
	case enums.OrderStatePaid:
		updates["payment_status"] = enums.PaymentStatusPaid
		if order.PaidAt == nil {
			updates["paid_at"] = now
		}
	case enums.OrderStateShipped:
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
		}
	case enums.OrderStateDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
	case enums.OrderStateCancelled:
		if order.CancelledAt == nil {
			updates["cancelled_at"] = now
		}
	case enums.OrderStateRefunded:
		updates["payment_status"] = enums.PaymentStatusRefunded
		updates["refunded_at"] = now
	}
	return updates
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
