package refunds

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists refund approval requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, refund *models.RefundApproval) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RefundApproval, error)
	// DecidePending applies updates only while the refund is still pending.
	DecidePending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	ListByStatus(ctx context.Context, status enums.RefundApprovalStatus) ([]models.RefundApproval, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundApproval, error)
}
