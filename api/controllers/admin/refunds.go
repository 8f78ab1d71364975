package admin

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/refunds"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	intentApprove = "approve"
	intentReject  = "reject"
)

type createRefundRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	Reason       *string         `json:"reason,omitempty" validate:"omitempty,max=2000"`
	RefundMethod string          `json:"refund_method"`
}

type refundDecisionForm struct {
	Intent         string          `form:"intent" validate:"required,oneof=approve reject"`
	ApprovedAmount decimal.Decimal `form:"approved_amount"`
	ReviewerNotes  *string         `form:"reviewer_notes" validate:"omitempty,max=2000"`
}

// ListRefunds filters by status, defaulting to the pending queue.
func ListRefunds(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refunds service unavailable"))
			return
		}

		status := enums.RefundApprovalStatusPending
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseRefundApprovalStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = parsed
		}

		list, err := svc.List(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CreateRefund opens a refund request on behalf of the customer.
func CreateRefund(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refunds service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		refund, err := svc.Request(r.Context(), refunds.RequestInput{
			OrderID:         orderID,
			RequestedAmount: payload.Amount,
			RequestedBy:     middleware.UserUUIDFromContext(r.Context()),
			Reason:          payload.Reason,
			RefundMethod:    enums.RefundMethod(payload.RefundMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, refund)
	}
}

// DecideRefund approves or rejects a pending refund from the review form.
func DecideRefund(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refunds service unavailable"))
			return
		}
		reviewer := middleware.UserUUIDFromContext(r.Context())
		if reviewer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		refundID, err := validators.ParseUUIDParam(r, "refundId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form refundDecisionForm
		if err := validators.DecodeForm(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch form.Intent {
		case intentApprove:
			refund, err := svc.Approve(r.Context(), refunds.ApproveInput{
				RefundID:       refundID,
				ApprovedAmount: form.ApprovedAmount,
				ReviewedBy:     *reviewer,
				ReviewerNotes:  form.ReviewerNotes,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, refund)
		case intentReject:
			refund, err := svc.Reject(r.Context(), refunds.RejectInput{
				RefundID:      refundID,
				ReviewedBy:    *reviewer,
				ReviewerNotes: form.ReviewerNotes,
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, refund)
		}
	}
}
