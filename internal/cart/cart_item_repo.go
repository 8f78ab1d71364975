package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItemRepository manages persistent cart items.
type CartItemRepository struct {
	repo.Base
}

// NewCartItemRepository binds the repository to the provided DB handle.
func NewCartItemRepository(db *gorm.DB) *CartItemRepository {
	return &CartItemRepository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *CartItemRepository) WithTx(tx *gorm.DB) ItemRepository {
	return &CartItemRepository{Base: r.Bind(tx)}
}

func (r *CartItemRepository) ListForCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.DB(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// FindLine returns the existing line for the product/variant pair.
func (r *CartItemRepository) FindLine(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error) {
	query := r.DB(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID == nil {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", *variantID)
	}
	return repo.First[models.CartItem](query)
}

func (r *CartItemRepository) Insert(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *CartItemRepository) UpdateQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity))
}

func (r *CartItemRepository) Delete(ctx context.Context, cartID, itemID uuid.UUID) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{}))
}

// ClearForCart removes every line of the cart.
func (r *CartItemRepository) ClearForCart(ctx context.Context, cartID uuid.UUID) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
