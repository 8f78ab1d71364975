package checkout

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const intentPlaceOrder = "place_order"

type cartSessions interface {
	Ensure(w http.ResponseWriter, r *http.Request) (string, *http.Request)
}

type placeOrderForm struct {
	Intent        string  `form:"intent" validate:"required"`
	Email         string  `form:"email" validate:"max=254"`
	Phone         string  `form:"phone" validate:"max=32"`
	FullName      string  `form:"full_name" validate:"max=200"`
	AddressLine1  string  `form:"address_line_1" validate:"max=300"`
	AddressLine2  *string `form:"address_line_2" validate:"omitempty,max=300"`
	City          string  `form:"city" validate:"max=120"`
	State         *string `form:"state" validate:"omitempty,max=120"`
	PostalCode    *string `form:"postal_code" validate:"omitempty,max=20"`
	Country       string  `form:"country" validate:"max=120"`
	PaymentMethod string  `form:"payment_method"`
	Notes         *string `form:"notes" validate:"omitempty,max=2000"`
}

// PlaceOrder turns the caller's cart into an order and answers 201 with the
// order id and number. A guest without a cart cookie gets one minted, so the
// empty-cart answer still leaves them with a session. A signed-in caller who
// leaves email blank checks out with the email on their token.
func PlaceOrder(svc checkoutsvc.Service, sessions cartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var form placeOrderForm
		if err := validators.DecodeForm(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if form.Intent != intentPlaceOrder {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown checkout intent %q", form.Intent))
			return
		}

		if middleware.UserUUIDFromContext(r.Context()) == nil && sessions != nil {
			_, r = sessions.Ensure(w, r)
		}
		contact := form.Email
		if strings.TrimSpace(contact) == "" {
			contact = middleware.UserEmailFromContext(r.Context())
		}

		result, err := svc.Place(r.Context(), checkoutsvc.PlaceOrderInput{
			Identity: middleware.CartIdentity(r.Context()),
			Email:    contact,
			Phone:    form.Phone,
			Shipping: types.AddressSnapshot{
				FullName:     form.FullName,
				Phone:        form.Phone,
				AddressLine1: form.AddressLine1,
				AddressLine2: form.AddressLine2,
				City:         form.City,
				State:        form.State,
				PostalCode:   form.PostalCode,
				Country:      form.Country,
			},
			PaymentMethod: form.PaymentMethod,
			Notes:         form.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
