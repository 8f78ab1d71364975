package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/shipments"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type createShipmentRequest struct {
	WarehouseID       *uuid.UUID            `json:"warehouse_id,omitempty"`
	TrackingNumber    *string               `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	Carrier           *string               `json:"carrier,omitempty" validate:"omitempty,max=100"`
	EstimatedDelivery *time.Time            `json:"estimated_delivery,omitempty"`
	Items             []shipments.ItemInput `json:"items" validate:"dive"`
}

type shipmentItemsRequest struct {
	Items []shipments.ItemInput `json:"items" validate:"required,min=1,dive"`
}

type shipmentEventRequest struct {
	At *time.Time `json:"at,omitempty"`
}

func ListShipments(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createShipmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Create(r.Context(), shipments.CreateInput{
			OrderID:           orderID,
			WarehouseID:       payload.WarehouseID,
			TrackingNumber:    payload.TrackingNumber,
			Carrier:           payload.Carrier,
			EstimatedDelivery: payload.EstimatedDelivery,
			Items:             payload.Items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shipment)
	}
}

func AddShipmentItems(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}
		shipmentID, err := validators.ParseUUIDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload shipmentItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipment, err := svc.AddItems(r.Context(), shipmentID, payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}

// MarkShipped and MarkDelivered stamp the shipment only; the order state is
// moved separately through the status endpoint.
func MarkShipped(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return shipmentEvent(logg, svc == nil, func(r *http.Request, id uuid.UUID, at *time.Time) (*models.Shipment, error) {
		return svc.MarkShipped(r.Context(), id, at)
	})
}

func MarkDelivered(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return shipmentEvent(logg, svc == nil, func(r *http.Request, id uuid.UUID, at *time.Time) (*models.Shipment, error) {
		return svc.MarkDelivered(r.Context(), id, at)
	})
}

func shipmentEvent(logg *logger.Logger, missing bool, apply func(*http.Request, uuid.UUID, *time.Time) (*models.Shipment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}
		shipmentID, err := validators.ParseUUIDParam(r, "shipmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload shipmentEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shipment, err := apply(r, shipmentID, payload.At)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipment)
	}
}
