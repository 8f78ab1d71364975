package enums

import "slices"

// OrderState is the canonical lifecycle position of an order.
type OrderState string

const (
	OrderStatePending    OrderState = "pending"
	OrderStateProcessing OrderState = "processing"
	OrderStatePaid       OrderState = "paid"
	OrderStateShipped    OrderState = "shipped"
	OrderStateDelivered  OrderState = "delivered"
	OrderStateCancelled  OrderState = "cancelled"
	OrderStateRefunded   OrderState = "refunded"
	OrderStateOnHold     OrderState = "on_hold"
)

var validOrderStates = []OrderState{
	OrderStatePending,
	OrderStateProcessing,
	OrderStatePaid,
	OrderStateShipped,
	OrderStateDelivered,
	OrderStateCancelled,
	OrderStateRefunded,
	OrderStateOnHold,
}

// suggestedNextStates drives the admin state picker. Transition does not
// enforce it; an admin may still move an order to any valid state.
var suggestedNextStates = map[OrderState][]OrderState{
	OrderStatePending:    {OrderStateProcessing, OrderStatePaid, OrderStateCancelled, OrderStateOnHold},
	OrderStateProcessing: {OrderStatePaid, OrderStateShipped, OrderStateCancelled, OrderStateOnHold},
	OrderStatePaid:       {OrderStateProcessing, OrderStateShipped, OrderStateCancelled, OrderStateRefunded, OrderStateOnHold},
	OrderStateShipped:    {OrderStateDelivered, OrderStateRefunded, OrderStateOnHold},
	OrderStateDelivered:  {OrderStateRefunded},
	OrderStateOnHold:     {OrderStatePending, OrderStateProcessing, OrderStatePaid, OrderStateShipped, OrderStateCancelled},
}

// OrderStates lists every known state in lifecycle order.
func OrderStates() []OrderState {
	return slices.Clone(validOrderStates)
}

// NextStates returns the states an admin is normally offered from o.
// Cancelled and refunded orders have none.
func (o OrderState) NextStates() []OrderState {
	return slices.Clone(suggestedNextStates[o])
}

func (o OrderState) String() string {
	return string(o)
}

func (o OrderState) IsValid() bool {
	return slices.Contains(validOrderStates, o)
}

func ParseOrderState(value string) (OrderState, error) {
	return parseEnum("order state", validOrderStates, value)
}

// IsTerminal reports whether no further transitions are expected from the state.
func (o OrderState) IsTerminal() bool {
	switch o {
	case OrderStateDelivered, OrderStateCancelled, OrderStateRefunded:
		return true
	}
	return false
}

// LegacyStatus maps the state onto the legacy status column. The boolean is
// false when the legacy column has no counterpart and must be left untouched.
func (o OrderState) LegacyStatus() (OrderStatus, bool) {
	switch o {
	case OrderStatePaid:
		return OrderStatusProcessing, true
	case OrderStateOnHold:
		return "", false
	}
	status := OrderStatus(o)
	if !status.IsValid() {
		return "", false
	}
	return status, true
}
