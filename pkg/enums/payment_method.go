package enums

import "slices"

// PaymentMethod identifies how the customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodCOD           PaymentMethod = "cod"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodMobileBanking PaymentMethod = "mobile_banking"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodCard,
	PaymentMethodMobileBanking,
	PaymentMethodBankTransfer,
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	return slices.Contains(validPaymentMethods, p)
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseEnum("payment method", validPaymentMethods, value)
}
