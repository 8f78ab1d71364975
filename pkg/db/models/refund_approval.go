package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// RefundApproval is a single reviewable refund request against an order.
type RefundApproval struct {
	ID              uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	RequestedAmount decimal.Decimal            `gorm:"column:requested_amount;type:numeric(12,2);not null" json:"requested_amount"`
	ApprovedAmount  decimal.NullDecimal        `gorm:"column:approved_amount;type:numeric(12,2)" json:"approved_amount"`
	Status          enums.RefundApprovalStatus `gorm:"column:status;type:refund_approval_status;not null;default:'pending'" json:"status"`
	RefundMethod    enums.RefundMethod         `gorm:"column:refund_method;not null;default:'original_payment'" json:"refund_method"`
	Reason          *string                    `gorm:"column:reason" json:"reason,omitempty"`
	RequestedBy     *uuid.UUID                 `gorm:"column:requested_by;type:uuid" json:"requested_by,omitempty"`
	RequestedAt     time.Time                  `gorm:"column:requested_at;not null" json:"requested_at"`
	ReviewedBy      *uuid.UUID                 `gorm:"column:reviewed_by;type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time                 `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewerNotes   *string                    `gorm:"column:reviewer_notes" json:"reviewer_notes,omitempty"`
	Order           *Order                     `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
