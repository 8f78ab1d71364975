package shipments

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), orders.NewRepository(conn), db.NewFromConn(conn), logg)
	require.NoError(t, err)
	return svc, conn
}

func TestCreateShipmentWithItems(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)
	item := dbtest.SeedOrderItem(t, conn, order.ID, 2, decimal.NewFromInt(50))
	carrier := " Pathao "

	shipment, err := svc.Create(ctx, CreateInput{
		OrderID: order.ID,
		Carrier: &carrier,
		Items:   []ItemInput{{OrderItemID: item.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusPending, shipment.Status)
	assert.Equal(t, "Pathao", *shipment.Carrier)
	require.Len(t, shipment.Items, 1)
	assert.Equal(t, 2, shipment.Items[0].Quantity)
}

func TestCreateShipmentUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{OrderID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAddItemsRejectsForeignOrderItems(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)
	other := dbtest.SeedOrder(t, conn, nil)
	foreign := dbtest.SeedOrderItem(t, conn, other.ID, 1, decimal.NewFromInt(10))
	own := dbtest.SeedOrderItem(t, conn, order.ID, 1, decimal.NewFromInt(10))

	shipment, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	_, err = svc.AddItems(ctx, shipment.ID, []ItemInput{{OrderItemID: own.ID, Quantity: 1}, {OrderItemID: foreign.ID, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	reloaded, err := NewRepository(conn).FindByID(ctx, shipment.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)

	_, err = svc.AddItems(ctx, shipment.ID, []ItemInput{{OrderItemID: own.ID, Quantity: 0}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := svc.AddItems(ctx, shipment.ID, []ItemInput{{OrderItemID: own.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 1)
}

func TestMarkShippedNeverOverwritesTimestamp(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)
	shipment, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	first := time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC)
	shipped, err := svc.MarkShipped(ctx, shipment.ID, &first)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusShipped, shipped.Status)
	require.NotNil(t, shipped.ShippedAt)
	assert.True(t, first.Equal(*shipped.ShippedAt))

	later := first.Add(24 * time.Hour)
	again, err := svc.MarkShipped(ctx, shipment.ID, &later)
	require.NoError(t, err)
	assert.True(t, first.Equal(*again.ShippedAt))
}

func TestMarkDeliveredMovesForwardOnly(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)
	shipment, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)

	deliveredAt := time.Date(2026, 1, 8, 15, 0, 0, 0, time.UTC)
	delivered, err := svc.MarkDelivered(ctx, shipment.ID, &deliveredAt)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.ShippedAt)
	assert.True(t, deliveredAt.Equal(*delivered.DeliveredAt))

	shippedAgain, err := svc.MarkShipped(ctx, shipment.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.ShipmentStatusDelivered, shippedAgain.Status)
	assert.True(t, deliveredAt.Equal(*shippedAgain.ShippedAt))

	parent, err := orders.NewRepository(conn).FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatePending, parent.CurrentState)
}

func TestMarkUnknownShipment(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.MarkShipped(context.Background(), uuid.New(), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListByOrderNewestFirst(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)

	older, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)
	require.NoError(t, conn.Exec("UPDATE shipments SET created_at = ? WHERE id = ?", time.Now().Add(-time.Hour).UTC(), older.ID).Error)
	newer, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)
	require.NoError(t, conn.Exec("UPDATE shipments SET created_at = ? WHERE id = ?", time.Now().UTC(), newer.ID).Error)

	rows, err := svc.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestItemsCannotExceedOrderedQuantity(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	order := dbtest.SeedOrder(t, conn, nil)
	item := dbtest.SeedOrderItem(t, conn, order.ID, 3, decimal.NewFromInt(120))

	_, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Items: []ItemInput{{OrderItemID: item.ID, Quantity: 4}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	first, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Items: []ItemInput{{OrderItemID: item.ID, Quantity: 2}}})
	require.NoError(t, err)

	second, err := svc.Create(ctx, CreateInput{OrderID: order.ID})
	require.NoError(t, err)
	_, err = svc.AddItems(ctx, second.ID, []ItemInput{{OrderItemID: item.ID, Quantity: 1}, {OrderItemID: item.ID, Quantity: 1}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := svc.AddItems(ctx, second.ID, []ItemInput{{OrderItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)

	_, err = svc.AddItems(ctx, first.ID, []ItemInput{{OrderItemID: item.ID, Quantity: 1}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	allocated, err := NewRepository(conn).AllocatedQuantities(ctx, []uuid.UUID{item.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, allocated[item.ID])
}
