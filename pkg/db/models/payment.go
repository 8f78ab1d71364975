package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Payment is the stub payment row written at checkout; no gateway moves money.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null" json:"payment_method"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency      string              `gorm:"column:currency;not null" json:"currency"`
	Status        enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'" json:"status"`
	TransactionID *string             `gorm:"column:transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
