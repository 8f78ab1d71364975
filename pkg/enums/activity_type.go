package enums

import "slices"

// ActivityType classifies rows in the system activity log.
type ActivityType string

const (
	ActivityRefundApproved     ActivityType = "refund_approved"
	ActivityRefundRejected     ActivityType = "refund_rejected"
	ActivityRefundRequested    ActivityType = "refund_requested"
	ActivityOrderHeld          ActivityType = "order_held"
	ActivityOrderReleased      ActivityType = "order_released"
	ActivityOrderNotesUpdated  ActivityType = "order_notes_updated"
	ActivityOrderStatusChanged ActivityType = "order_status_changed"
	ActivityManualOrderCreated ActivityType = "manual_order_created"
)

var validActivityTypes = []ActivityType{
	ActivityRefundApproved,
	ActivityRefundRejected,
	ActivityRefundRequested,
	ActivityOrderHeld,
	ActivityOrderReleased,
	ActivityOrderNotesUpdated,
	ActivityOrderStatusChanged,
	ActivityManualOrderCreated,
}

func (a ActivityType) String() string {
	return string(a)
}

func (a ActivityType) IsValid() bool {
	return slices.Contains(validActivityTypes, a)
}

func ParseActivityType(value string) (ActivityType, error) {
	return parseEnum("activity type", validActivityTypes, value)
}
