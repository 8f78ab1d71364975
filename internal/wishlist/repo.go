package wishlist

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.DB(ctx).
		Exec(`INSERT INTO wishlist_items (id, user_id, product_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`,
			uuid.New(), userID, productID, time.Now().UTC()).
		Error
}

// RemoveItem deletes the user-product like and reports whether one existed.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected > 0, res.Error
}

// ListItems returns the user's liked products, newest first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.DB(ctx).
		Table("wishlist_items wi").
		Select("wi.id AS wishlist_id, wi.created_at AS wishlist_created_at, p.id AS product_id, p.name, p.sku, p.base_price").
		Joins("JOIN products p ON p.id = wi.product_id AND p.deleted_at IS NULL").
		Where("wi.user_id = ?", userID)

	var records []itemRecord
	if err := pagination.Apply(query, "wi", cursor, params.Limit).Scan(&records).Error; err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, record.toItem())
	}
	page := pagination.Build(items, params.Limit, func(i Item) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.WishlistID}
	})
	return &page, nil
}

// ProductIDs returns every product the user has liked.
func (r *Repository) ProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("product_id", &ids).Error
	return ids, err
}

type itemRecord struct {
	WishlistID        uuid.UUID       `gorm:"column:wishlist_id"`
	WishlistCreatedAt time.Time       `gorm:"column:wishlist_created_at"`
	ProductID         uuid.UUID       `gorm:"column:product_id"`
	Name              string          `gorm:"column:name"`
	SKU               *string         `gorm:"column:sku"`
	BasePrice         decimal.Decimal `gorm:"column:base_price"`
}

func (r itemRecord) toItem() Item {
	return Item{
		WishlistID: r.WishlistID,
		ProductID:  r.ProductID,
		Name:       r.Name,
		SKU:        r.SKU,
		Price:      r.BasePrice,
		CreatedAt:  r.WishlistCreatedAt,
	}
}
