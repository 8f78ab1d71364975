package enums

import "slices"

// ShipmentStatus is the fulfillment progress of a single shipment.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusShipped,
	ShipmentStatusDelivered,
}

func (s ShipmentStatus) String() string {
	return string(s)
}

func (s ShipmentStatus) IsValid() bool {
	return slices.Contains(validShipmentStatuses, s)
}

func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	return parseEnum("shipment status", validShipmentStatuses, value)
}

// Rank orders shipment statuses so progress only moves forward.
func (s ShipmentStatus) Rank() int {
	switch s {
	case ShipmentStatusShipped:
		return 1
	case ShipmentStatusDelivered:
		return 2
	}
	return 0
}
