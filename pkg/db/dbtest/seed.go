package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SeedOrder inserts a pending 100.00 order. mutate may adjust fields before insert.
func SeedOrder(t *testing.T, db *gorm.DB, mutate func(o *models.Order)) *models.Order {
	t.Helper()
	id := uuid.New()
	order := &models.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("ORD-20260105-%06d", id.ID()%1000000),
		Email:         "buyer@example.com",
		Status:        enums.OrderStatusPending,
		CurrentState:  enums.OrderStatePending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCOD,
		Source:        enums.OrderSourceWeb,
		Currency:      "BDT",
		Subtotal:      decimal.NewFromInt(100),
		Total:         decimal.NewFromInt(100),
		Shipping: types.AddressSnapshot{
			FullName:     "Rahim Uddin",
			Phone:        "+8801700000000",
			AddressLine1: "House 12, Road 4",
			City:         "Dhaka",
			Country:      "Bangladesh",
		},
		CreatedAt: time.Now().UTC(),
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Omit("Items", "Payments", "Shipments").Create(order).Error)
	return order
}

// SeedOrderItem adds one line to order.
func SeedOrderItem(t *testing.T, db *gorm.DB, orderID uuid.UUID, qty int, unit decimal.Decimal) *models.OrderItem {
	t.Helper()
	productID := uuid.New()
	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   &productID,
		ProductName: "Jamdani Saree",
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  unit.Mul(decimal.NewFromInt(int64(qty))),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// SeedProduct inserts an active product priced at price.
func SeedProduct(t *testing.T, db *gorm.DB, name string, price decimal.Decimal) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      name,
		BasePrice: price,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// SeedProfile inserts an active profile with the given role.
func SeedProfile(t *testing.T, db *gorm.DB, role enums.ProfileRole) *models.Profile {
	t.Helper()
	id := uuid.New()
	profile := &models.Profile{
		ID:       id,
		Email:    fmt.Sprintf("%s@example.com", id.String()[:8]),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
