package enums

import "slices"

// OrderSource records which channel created an order.
type OrderSource string

const (
	OrderSourceWeb    OrderSource = "web"
	OrderSourceManual OrderSource = "manual"
)

var validOrderSources = []OrderSource{
	OrderSourceWeb,
	OrderSourceManual,
}

func (o OrderSource) String() string {
	return string(o)
}

func (o OrderSource) IsValid() bool {
	return slices.Contains(validOrderSources, o)
}

func ParseOrderSource(value string) (OrderSource, error) {
	return parseEnum("order source", validOrderSources, value)
}
