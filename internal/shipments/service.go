package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ItemInput allocates a quantity of an order item to a shipment.
type ItemInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1"`
}

type CreateInput struct {
	OrderID           uuid.UUID
	WarehouseID       *uuid.UUID
	TrackingNumber    *string
	Carrier           *string
	EstimatedDelivery *time.Time
	Items             []ItemInput
}

// Service manages shipments. Marking a shipment never moves the parent order;
// admins transition orders explicitly.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Shipment, error)
	AddItems(ctx context.Context, shipmentID uuid.UUID, items []ItemInput) (*models.Shipment, error)
	MarkShipped(ctx context.Context, shipmentID uuid.UUID, at *time.Time) (*models.Shipment, error)
	MarkDelivered(ctx context.Context, shipmentID uuid.UUID, at *time.Time) (*models.Shipment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
}

type service struct {
	repo   Repository
	orders orderLookup
	tx     txRunner
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, orders orderLookup, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, orders: orders, tx: tx, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Shipment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}
	if _, err := s.orders.FindByID(ctx, input.OrderID); err != nil {
		return nil, mapNotFound(err, "order not found", "load order")
	}

	shipment := &models.Shipment{
		ID:                uuid.New(),
		OrderID:           input.OrderID,
		WarehouseID:       input.WarehouseID,
		TrackingNumber:    trimmedOrNil(input.TrackingNumber),
		Carrier:           trimmedOrNil(input.Carrier),
		Status:            enums.ShipmentStatusPending,
		EstimatedDelivery: input.EstimatedDelivery,
	}

	var created *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
		}
		if err := s.attachItems(ctx, repo, shipment, input.Items); err != nil {
			return err
		}
		var err error
		created, err = repo.FindByID(ctx, shipment.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    input.OrderID.String(),
		"shipment_id": shipment.ID.String(),
	}), "shipment created")
	return created, nil
}

func (s *service) AddItems(ctx context.Context, shipmentID uuid.UUID, items []ItemInput) (*models.Shipment, error) {
	if shipmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var updated *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		shipment, err := repo.FindByID(ctx, shipmentID)
		if err != nil {
			return mapNotFound(err, "shipment not found", "load shipment")
		}
		if err := s.attachItems(ctx, repo, shipment, items); err != nil {
			return err
		}
		updated, err = repo.FindByID(ctx, shipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) MarkShipped(ctx context.Context, shipmentID uuid.UUID, at *time.Time) (*models.Shipment, error) {
	return s.mark(ctx, shipmentID, at, Repository.MarkShipped)
}

func (s *service) MarkDelivered(ctx context.Context, shipmentID uuid.UUID, at *time.Time) (*models.Shipment, error) {
	return s.mark(ctx, shipmentID, at, Repository.MarkDelivered)
}

func (s *service) mark(ctx context.Context, shipmentID uuid.UUID, at *time.Time, write func(Repository, context.Context, uuid.UUID, time.Time) (int64, error)) (*models.Shipment, error) {
	if shipmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	stamp := s.now().UTC()
	if at != nil {
		stamp = at.UTC()
	}

	rows, err := write(s.repo, ctx, shipmentID, stamp)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipment")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
	}
	shipment, err := s.repo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, mapNotFound(err, "shipment not found", "reload shipment")
	}
	return shipment, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return rows, nil
}

// attachItems checks every referenced order item belongs to the shipment's
// order and that no item is allocated beyond its ordered quantity across all
// shipments.
func (s *service) attachItems(ctx context.Context, repo Repository, shipment *models.Shipment, items []ItemInput) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]struct{}{}
	for _, item := range items {
		if _, ok := seen[item.OrderItemID]; ok {
			continue
		}
		seen[item.OrderItemID] = struct{}{}
		ids = append(ids, item.OrderItemID)
	}

	found, err := repo.OrderItems(ctx, shipment.OrderID, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	if len(found) != len(ids) {
		owned := map[uuid.UUID]struct{}{}
		for _, row := range found {
			owned[row.ID] = struct{}{}
		}
		var foreign []string
		for _, id := range ids {
			if _, ok := owned[id]; !ok {
				foreign = append(foreign, id.String())
			}
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "order items do not belong to this shipment's order").
			WithDetails(map[string]any{"order_item_ids": foreign})
	}

	allocated, err := repo.AllocatedQuantities(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipped quantities")
	}
	ordered := make(map[uuid.UUID]int, len(found))
	for _, row := range found {
		ordered[row.ID] = row.Quantity
	}
	requested := make(map[uuid.UUID]int, len(ids))
	for _, item := range items {
		requested[item.OrderItemID] += item.Quantity
	}
	for _, id := range ids {
		if allocated[id]+requested[id] > ordered[id] {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "order item %s only has %d unallocated", id, max(ordered[id]-allocated[id], 0)).
				WithDetails(map[string]any{
					"order_item_id": id.String(),
					"ordered":       ordered[id],
					"allocated":     allocated[id],
					"requested":     requested[id],
				})
		}
	}

	rows := make([]models.ShipmentItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.ShipmentItem{
			ID:          uuid.New(),
			ShipmentID:  shipment.ID,
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
		})
	}
	if err := repo.CreateItems(ctx, rows); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment items")
	}
	return nil
}

func validateItems(items []ItemInput) error {
	for i, item := range items {
		if item.OrderItemID == uuid.Nil {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].order_item_id required", i)
		}
		if item.Quantity < 1 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].quantity must be at least 1", i)
		}
	}
	return nil
}

func mapNotFound(err error, notFound, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
