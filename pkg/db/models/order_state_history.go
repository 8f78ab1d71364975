package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// OrderStateHistory is one append-only audit row per order transition.
type OrderStateHistory struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	FromState *enums.OrderState `gorm:"column:from_state;type:order_state" json:"from_state"`
	ToState   enums.OrderState  `gorm:"column:to_state;type:order_state;not null" json:"to_state"`
	ChangedBy *uuid.UUID        `gorm:"column:changed_by;type:uuid" json:"changed_by,omitempty"`
	Reason    *string           `gorm:"column:reason" json:"reason,omitempty"`
	Notes     *string           `gorm:"column:notes" json:"notes,omitempty"`
	Metadata  types.JSONMap     `gorm:"column:metadata;type:jsonb;serializer:json" json:"metadata,omitempty"`
	ChangedAt time.Time         `gorm:"column:changed_at;not null" json:"changed_at"`
}

func (OrderStateHistory) TableName() string { return "order_state_history" }
