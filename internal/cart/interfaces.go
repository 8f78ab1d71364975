package cart

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface for cart headers.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
}

// ItemRepository defines the persistence surface for cart lines.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	ListForCart(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	FindLine(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error)
	Insert(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (int64, error)
	Delete(ctx context.Context, cartID, itemID uuid.UUID) (int64, error)
	ClearForCart(ctx context.Context, cartID uuid.UUID) error
}

type productReader interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}
