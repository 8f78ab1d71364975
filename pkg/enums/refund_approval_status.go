package enums

import "slices"

// RefundApprovalStatus is the review state of a refund request.
type RefundApprovalStatus string

const (
	RefundApprovalStatusPending   RefundApprovalStatus = "pending"
	RefundApprovalStatusApproved  RefundApprovalStatus = "approved"
	RefundApprovalStatusRejected  RefundApprovalStatus = "rejected"
	RefundApprovalStatusProcessed RefundApprovalStatus = "processed"
)

var validRefundApprovalStatuses = []RefundApprovalStatus{
	RefundApprovalStatusPending,
	RefundApprovalStatusApproved,
	RefundApprovalStatusRejected,
	RefundApprovalStatusProcessed,
}

func (r RefundApprovalStatus) String() string {
	return string(r)
}

func (r RefundApprovalStatus) IsValid() bool {
	return slices.Contains(validRefundApprovalStatuses, r)
}

func ParseRefundApprovalStatus(value string) (RefundApprovalStatus, error) {
	return parseEnum("refund approval status", validRefundApprovalStatuses, value)
}
