package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type transitionRequest struct {
	ToState   string        `json:"to_state" validate:"required"`
	FromState *string       `json:"from_state,omitempty"`
	Reason    *string       `json:"reason,omitempty" validate:"omitempty,max=500"`
	Notes     *string       `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Metadata  types.JSONMap `json:"metadata,omitempty"`
}

type holdRequest struct {
	Reason string     `json:"reason" validate:"required,max=500"`
	Until  *time.Time `json:"until,omitempty"`
}

type releaseRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type notesRequest struct {
	InternalNotes types.NullableString `json:"internal_notes"`
	CustomerNotes types.NullableString `json:"customer_notes"`
}

type stateOption struct {
	State    enums.OrderState   `json:"state"`
	Terminal bool               `json:"terminal"`
	Next     []enums.OrderState `json:"next"`
}

type orderTransitions struct {
	OrderID      uuid.UUID          `json:"order_id"`
	CurrentState enums.OrderState   `json:"current_state"`
	Next         []enums.OrderState `json:"next"`
}

func newStateOption(state enums.OrderState) stateOption {
	next := state.NextStates()
	if next == nil {
		next = []enums.OrderState{}
	}
	return stateOption{State: state, Terminal: state.IsTerminal(), Next: next}
}

// OrderStates lists every order state with the transitions the admin UI offers.
func OrderStates(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		states := enums.OrderStates()
		out := make([]stateOption, 0, len(states))
		for _, state := range states {
			out = append(out, newStateOption(state))
		}
		responses.WriteSuccess(w, out)
	}
}

func OrderTransitions(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opt := newStateOption(order.CurrentState)
		responses.WriteSuccess(w, orderTransitions{OrderID: order.ID, CurrentState: order.CurrentState, Next: opt.Next})
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func buildListFilters(r *http.Request) (orders.ListFilters, error) {
	q := r.URL.Query()
	filters := orders.ListFilters{Search: validators.QueryText(r, "q", 100)}

	if raw := strings.TrimSpace(q.Get("state")); raw != "" {
		state, err := enums.ParseOrderState(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter")
		}
		filters.State = &state
	}
	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id filter")
		}
		filters.UserID = &id
	}
	return filters, nil
}

// OrderDetail returns the order with items, payments and shipments.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrderHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := svc.History(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// TransitionOrder moves an order to a new state. A from_state makes the write
// conditional on the order still being there.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := enums.ParseOrderState(payload.ToState)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to_state"))
			return
		}
		input := orders.TransitionInput{
			OrderID:   orderID,
			ToState:   to,
			ChangedBy: middleware.UserUUIDFromContext(r.Context()),
			Reason:    payload.Reason,
			Notes:     payload.Notes,
			Metadata:  payload.Metadata,
		}
		if payload.FromState != nil && strings.TrimSpace(*payload.FromState) != "" {
			from, err := enums.ParseOrderState(*payload.FromState)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from_state"))
				return
			}
			input.FromState = &from
		}

		result, err := svc.Transition(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func HoldOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload holdRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Hold(r.Context(), orders.HoldInput{
			OrderID: orderID,
			Reason:  payload.Reason,
			Until:   payload.Until,
			ActorID: middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ReleaseOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload releaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Release(r.Context(), orders.ReleaseInput{
			OrderID: orderID,
			Notes:   payload.Notes,
			ActorID: middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdateNotes patches internal and customer notes. An explicit null clears a field.
func UpdateNotes(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload notesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateNotes(r.Context(), orders.NotesInput{
			OrderID:       orderID,
			InternalNotes: payload.InternalNotes,
			CustomerNotes: payload.CustomerNotes,
			ActorID:       middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
