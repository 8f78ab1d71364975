package enums

import "slices"

// RefundMethod is how approved money goes back to the customer.
type RefundMethod string

const (
	RefundMethodOriginalPayment RefundMethod = "original_payment"
	RefundMethodStoreCredit     RefundMethod = "store_credit"
	RefundMethodBankTransfer    RefundMethod = "bank_transfer"
	RefundMethodMobileBanking   RefundMethod = "mobile_banking"
)

var validRefundMethods = []RefundMethod{
	RefundMethodOriginalPayment,
	RefundMethodStoreCredit,
	RefundMethodBankTransfer,
	RefundMethodMobileBanking,
}

func (r RefundMethod) String() string {
	return string(r)
}

func (r RefundMethod) IsValid() bool {
	return slices.Contains(validRefundMethods, r)
}

func ParseRefundMethod(value string) (RefundMethod, error) {
	return parseEnum("refund method", validRefundMethods, value)
}
