package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog row the cart reads prices and names from.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	SKU       *string         `gorm:"column:sku" json:"sku,omitempty"`
	BasePrice decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null" json:"base_price"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"column:deleted_at;index" json:"-"`
}
