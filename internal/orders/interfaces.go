package orders

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence surface of orders, their items, payments and
// the append-only state history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[models.Order], error)
	CompareAndSetState(ctx context.Context, id uuid.UUID, observed enums.OrderState, updates map[string]any) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	AppendHistory(ctx context.Context, entry *models.OrderStateHistory) error
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStateHistory, error)
	LatestHistory(ctx context.Context, orderID uuid.UUID) (*models.OrderStateHistory, error)
}
