package refunds

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestInput opens a refund request. When OwnerID is set the order must
// belong to that customer.
type RequestInput struct {
	OrderID         uuid.UUID
	RequestedAmount decimal.Decimal
	RequestedBy     *uuid.UUID
	OwnerID         *uuid.UUID
	Reason          *string
	RefundMethod    enums.RefundMethod
}

type ApproveInput struct {
	RefundID       uuid.UUID
	ApprovedAmount decimal.Decimal
	ReviewedBy     uuid.UUID
	ReviewerNotes  *string
}

type RejectInput struct {
	RefundID      uuid.UUID
	ReviewedBy    uuid.UUID
	ReviewerNotes *string
}
