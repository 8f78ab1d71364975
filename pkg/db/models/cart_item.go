package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem keeps the price and naming snapshot captured when the line was added.
type CartItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index" json:"cart_id"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	VariantID   *uuid.UUID      `gorm:"column:variant_id;type:uuid" json:"variant_id,omitempty"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	VariantName *string         `gorm:"column:variant_name" json:"variant_name,omitempty"`
	SKU         *string         `gorm:"column:sku" json:"sku,omitempty"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// LineTotal is quantity times the captured unit price.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
