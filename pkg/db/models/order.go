package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order is a placed purchase. Its monetary and address snapshot is written once
// at checkout; afterwards only state transitions and admin notes mutate it.
type Order struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber    string                `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	UserID         *uuid.UUID            `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	Email          string                `gorm:"column:email;not null" json:"email"`
	Phone          *string               `gorm:"column:phone" json:"phone,omitempty"`
	Status         enums.OrderStatus     `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	CurrentState   enums.OrderState      `gorm:"column:current_state;type:order_state;not null;default:'pending'" json:"current_state"`
	PaymentStatus  enums.PaymentStatus   `gorm:"column:payment_status;type:payment_status;not null;default:'pending'" json:"payment_status"`
	PaymentMethod  enums.PaymentMethod   `gorm:"column:payment_method;type:payment_method;not null;default:'cod'" json:"payment_method"`
	Source         enums.OrderSource     `gorm:"column:source;not null;default:'web'" json:"source"`
	Currency       string                `gorm:"column:currency;not null;default:'BDT'" json:"currency"`
	Subtotal       decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal       `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0" json:"discount_amount"`
	ShippingCost   decimal.Decimal       `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0" json:"shipping_cost"`
	TaxAmount      decimal.Decimal       `gorm:"column:tax_amount;type:numeric(12,2);not null;default:0" json:"tax_amount"`
	Total          decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Shipping       types.AddressSnapshot `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Billing        types.AddressSnapshot `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	CustomerNotes  *string               `gorm:"column:customer_notes" json:"customer_notes,omitempty"`
	InternalNotes  *string               `gorm:"column:internal_notes" json:"internal_notes,omitempty"`
	HoldReason     *string               `gorm:"column:hold_reason" json:"hold_reason,omitempty"`
	HoldUntil      *time.Time            `gorm:"column:hold_until" json:"hold_until,omitempty"`
	CreatedBy      *uuid.UUID            `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	PaidAt         *time.Time            `gorm:"column:paid_at" json:"paid_at,omitempty"`
	ShippedAt      *time.Time            `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time            `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt    *time.Time            `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	RefundedAt     *time.Time            `gorm:"column:refunded_at" json:"refunded_at,omitempty"`
	Items          []OrderItem           `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments       []Payment             `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Shipments      []Shipment            `gorm:"foreignKey:OrderID" json:"shipments,omitempty"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt        `gorm:"column:deleted_at;index" json:"-"`
}

// ComputedTotal applies subtotal - discount + shipping + tax.
func (o Order) ComputedTotal() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountAmount).Add(o.ShippingCost).Add(o.TaxAmount)
}

// EffectiveState resolves the order's position, falling back to the legacy
// status column and finally to pending for rows written before current_state existed.
func (o Order) EffectiveState() enums.OrderState {
	if o.CurrentState != "" {
		return o.CurrentState
	}
	if o.Status != "" {
		return enums.OrderState(o.Status)
	}
	return enums.OrderStatePending
}
