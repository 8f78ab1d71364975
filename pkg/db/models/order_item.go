package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot of a purchased product line.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid" json:"product_id,omitempty"`
	VariantID   *uuid.UUID      `gorm:"column:variant_id;type:uuid" json:"variant_id,omitempty"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	VariantName *string         `gorm:"column:variant_name" json:"variant_name,omitempty"`
	SKU         *string         `gorm:"column:sku" json:"sku,omitempty"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null" json:"total_price"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
