package cart

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for cart headers.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{Base: r.Bind(tx)}
}

// FindByUser loads the most recent cart owned by the user.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return repo.First[models.Cart](r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC"))
}

// FindBySession loads the guest cart for the cookie session. Carts already
// claimed by a user are never matched by session.
func (r *Repository) FindBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	return repo.First[models.Cart](r.DB(ctx).
		Where("session_id = ? AND user_id IS NULL", strings.TrimSpace(sessionID)).
		Order("created_at DESC"))
}

// Create inserts a new cart header. It returns gorm.ErrDuplicatedKey when
// the user or session already owns a cart; ON CONFLICT keeps a surrounding
// transaction usable for the re-read.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	res := r.DB(ctx).Omit("Items").Clauses(clause.OnConflict{DoNothing: true}).Create(cart)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrDuplicatedKey
	}
	return nil
}
