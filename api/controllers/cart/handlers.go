package cart

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type cartSessions interface {
	Ensure(w http.ResponseWriter, r *http.Request) (string, *http.Request)
}

type actionForm struct {
	Intent    string     `form:"intent" validate:"required,oneof=add update remove clear"`
	ProductID *uuid.UUID `form:"product_id"`
	VariantID *uuid.UUID `form:"variant_id"`
	ItemID    *uuid.UUID `form:"item_id"`
	Quantity  int        `form:"quantity" validate:"min=0"`
}

// CartView is the cart as rendered by the storefront.
type CartView struct {
	ID        *uuid.UUID        `json:"id,omitempty"`
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func newCartView(cart *models.Cart) CartView {
	view := CartView{Items: []models.CartItem{}, Subtotal: decimal.Zero}
	if cart == nil {
		return view
	}
	if cart.ID != uuid.Nil {
		id := cart.ID
		view.ID = &id
	}
	if cart.Items != nil {
		view.Items = cart.Items
	}
	for _, item := range view.Items {
		view.ItemCount += item.Quantity
	}
	view.Subtotal = cart.Subtotal()
	return view
}

// Fetch returns the caller's cart. Guests without a cookie get an empty cart.
func Fetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		cart, err := svc.Get(r.Context(), middleware.CartIdentity(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cart))
	}
}

// Apply runs the posted cart intent: add, update, remove or clear.
func Apply(svc cartsvc.Service, sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var form actionForm
		if err := validators.DecodeForm(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent, err := cartsvc.ParseIntent(form.Intent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cartsvc.ActionInput{
			Intent:    intent,
			VariantID: form.VariantID,
			Quantity:  form.Quantity,
		}
		if form.ProductID != nil {
			input.ProductID = *form.ProductID
		}
		if form.ItemID != nil {
			input.ItemID = *form.ItemID
		}
		if intent == cartsvc.IntentAdd && input.Quantity == 0 {
			input.Quantity = 1
		}

		if middleware.UserUUIDFromContext(r.Context()) == nil && sessions != nil {
			_, r = sessions.Ensure(w, r)
		}

		cart, err := svc.Apply(r.Context(), middleware.CartIdentity(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cart))
	}
}
