package admin

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type manualOrderRequest struct {
	CustomerID    *uuid.UUID             `json:"customer_id,omitempty"`
	Email         string                 `json:"email" validate:"required,email"`
	Phone         string                 `json:"phone" validate:"required,max=32"`
	Shipping      types.AddressSnapshot  `json:"shipping_address"`
	Billing       *types.AddressSnapshot `json:"billing_address,omitempty"`
	PaymentMethod string                 `json:"payment_method"`
	Items         []checkout.ManualItem  `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal        `json:"discount_amount"`
	ShippingCost  decimal.Decimal        `json:"shipping_cost"`
	Tax           decimal.Decimal        `json:"tax_amount"`
	CustomerNotes *string                `json:"customer_notes,omitempty"`
	InternalNotes *string                `json:"internal_notes,omitempty"`
}

// CreateManualOrder records an order taken by staff outside the storefront.
func CreateManualOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		actorID := middleware.UserUUIDFromContext(r.Context())
		if actorID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload manualOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceManual(r.Context(), checkout.ManualOrderInput{
			ActorID:       *actorID,
			CustomerID:    payload.CustomerID,
			Email:         payload.Email,
			Phone:         payload.Phone,
			Shipping:      payload.Shipping,
			Billing:       payload.Billing,
			PaymentMethod: payload.PaymentMethod,
			Items:         payload.Items,
			Discount:      payload.Discount,
			ShippingCost:  payload.ShippingCost,
			Tax:           payload.Tax,
			CustomerNotes: payload.CustomerNotes,
			InternalNotes: payload.InternalNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
