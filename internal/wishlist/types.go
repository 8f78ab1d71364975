package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one liked product as shown on the wishlist page.
type Item struct {
	WishlistID uuid.UUID       `json:"wishlist_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	SKU        *string         `json:"sku,omitempty"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToggleResult reports the wishlist state after a toggle.
type ToggleResult struct {
	ProductID uuid.UUID `json:"product_id"`
	Liked     bool      `json:"liked"`
}
