package shipments

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists shipments and their item allocations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) error
	CreateItems(ctx context.Context, items []models.ShipmentItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
	OrderItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) ([]models.OrderItem, error)
	AllocatedQuantities(ctx context.Context, orderItemIDs []uuid.UUID) (map[uuid.UUID]int, error)
	MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a shipments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.DB(ctx).Omit("Items").Create(shipment).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.ShipmentItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return repo.First[models.Shipment](r.DB(ctx).
		Preload("Items").
		Where("id = ?", id))
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	var rows []models.Shipment
	err := r.DB(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) OrderItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) ([]models.OrderItem, error) {
	var rows []models.OrderItem
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.DB(ctx).
		Where("order_id = ? AND id IN ?", orderID, ids).
		Find(&rows).Error
	return rows, err
}

// AllocatedQuantities sums what every shipment already carries per order item.
func (r *repository) AllocatedQuantities(ctx context.Context, orderItemIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(orderItemIDs))
	if len(orderItemIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		OrderItemID uuid.UUID
		Total       int
	}
	err := r.DB(ctx).
		Model(&models.ShipmentItem{}).
		Select("order_item_id, COALESCE(SUM(quantity), 0) AS total").
		Where("order_item_id IN ?", orderItemIDs).
		Group("order_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrderItemID] = row.Total
	}
	return out, nil
}

// MarkShipped stamps shipped_at only when unset. A delivered shipment keeps
// its status.
func (r *repository) MarkShipped(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"shipped_at": gorm.Expr("COALESCE(shipped_at, ?)", at),
			"status":     gorm.Expr("CASE WHEN status = 'delivered' THEN status ELSE 'shipped' END"),
		}))
}

// MarkDelivered stamps delivered_at only when unset and backfills shipped_at.
func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	return repo.Affected(r.DB(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", at),
			"shipped_at":   gorm.Expr("COALESCE(shipped_at, ?)", at),
			"status":       gorm.Expr("'delivered'"),
		}))
}
