package refunds

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds a refunds repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, refund *models.RefundApproval) error {
	return r.DB(ctx).Omit("Order").Create(refund).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RefundApproval, error) {
	return repo.First[models.RefundApproval](r.DB(ctx).
		Preload("Order").
		Where("id = ?", id))
}

func (r *repository) DecidePending(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.RefundApproval{}).
		Where("id = ? AND status = ?", id, enums.RefundApprovalStatusPending).
		Updates(updates))
}

func (r *repository) ListByStatus(ctx context.Context, status enums.RefundApprovalStatus) ([]models.RefundApproval, error) {
	var rows []models.RefundApproval
	err := r.DB(ctx).
		Preload("Order").
		Where("status = ?", status).
		Order("requested_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.RefundApproval, error) {
	var rows []models.RefundApproval
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("requested_at DESC").
		Find(&rows).Error
	return rows, err
}
