package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Shipment is one physical fulfillment unit of an order.
type Shipment struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID           uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	WarehouseID       *uuid.UUID           `gorm:"column:warehouse_id;type:uuid" json:"warehouse_id,omitempty"`
	TrackingNumber    *string              `gorm:"column:tracking_number" json:"tracking_number,omitempty"`
	Carrier           *string              `gorm:"column:carrier" json:"carrier,omitempty"`
	Status            enums.ShipmentStatus `gorm:"column:status;type:shipment_status;not null;default:'pending'" json:"status"`
	ShippedAt         *time.Time           `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery" json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time           `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	Items             []ShipmentItem       `gorm:"foreignKey:ShipmentID" json:"items,omitempty"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ShipmentItem links a quantity of an order item to a shipment.
type ShipmentItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShipmentID  uuid.UUID `gorm:"column:shipment_id;type:uuid;not null;index" json:"shipment_id"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null" json:"order_item_id"`
	Quantity    int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
