package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

const defaultEntityLimit = 50

// Repository writes and reads system_activity_log rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Insert(ctx context.Context, row *models.SystemActivityLog) error {
	return r.DB(ctx).Create(row).Error
}

// ListForEntity returns the newest rows for one entity, capped at limit.
func (r *Repository) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.SystemActivityLog, error) {
	if limit <= 0 {
		limit = defaultEntityLimit
	}
	var rows []models.SystemActivityLog
	err := r.DB(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
