package orders

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Omit("Items", "Payments", "Shipments").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return repo.First[models.Order](r.DB(ctx).Where("id = ?", id))
}

func (r *repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return repo.First[models.Order](r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payments").
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Shipments.Items").
		Where("id = ?", id))
}

func (r *repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return repo.First[models.Order](r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("order_number = ?", strings.TrimSpace(orderNumber)))
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[models.Order], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.DB(ctx).Model(&models.Order{})
	if filters.State != nil {
		query = query.Where("orders.current_state = ?", *filters.State)
	}
	if filters.UserID != nil {
		query = query.Where("orders.user_id = ?", *filters.UserID)
	}
	if term := strings.TrimSpace(filters.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(orders.order_number) LIKE ? OR LOWER(orders.email) LIKE ?", like, like)
	}

	var rows []models.Order
	if err := pagination.Apply(query, "orders", cursor, params.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	page := pagination.Build(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page, nil
}

// CompareAndSetState applies updates only while the row still holds the
// observed state. Zero affected rows means another writer got there first.
func (r *repository) CompareAndSetState(ctx context.Context, id uuid.UUID, observed enums.OrderState, updates map[string]any) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND current_state = ?", id, observed).
		Updates(updates))
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates))
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.OrderStateHistory) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStateHistory, error) {
	var rows []models.OrderStateHistory
	err := r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) LatestHistory(ctx context.Context, orderID uuid.UUID) (*models.OrderStateHistory, error) {
	return repo.First[models.OrderStateHistory](r.DB(ctx).
		Where("order_id = ?", orderID).
		Order("changed_at DESC"))
}
