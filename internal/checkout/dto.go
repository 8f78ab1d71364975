package checkout

import (
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrItemsNotSaved marks a checkout whose order row committed but whose
// items, payment or history did not. The order exists with no lines and
// needs manual follow-up.
var ErrItemsNotSaved = errors.New("order created but items not saved")

// MsgItemsNotSaved is the customer-facing text for ErrItemsNotSaved.
const MsgItemsNotSaved = "Order was created, but items failed to save. Please contact support."

// PlaceOrderInput is the storefront place_order submission.
type PlaceOrderInput struct {
	Identity      cart.Identity
	Email         string
	Phone         string
	Shipping      types.AddressSnapshot
	PaymentMethod string
	Notes         *string
}

// PlaceResult identifies the created order.
type PlaceResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// ManualItem is one admin-entered line with an explicit unit price.
type ManualItem struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ManualOrderInput is an admin-created order taken over the phone or in person.
type ManualOrderInput struct {
	ActorID       uuid.UUID
	CustomerID    *uuid.UUID
	Email         string
	Phone         string
	Shipping      types.AddressSnapshot
	Billing       *types.AddressSnapshot
	PaymentMethod string
	Items         []ManualItem
	Discount      decimal.Decimal
	ShippingCost  decimal.Decimal
	Tax           decimal.Decimal
	CustomerNotes *string
	InternalNotes *string
}
