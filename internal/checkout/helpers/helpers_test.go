package helpers

import (
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func TestComputeCartTotals(t *testing.T) {
	t.Parallel()
	items := []models.CartItem{
		{Quantity: 2, Price: decimal.RequireFromString("1250.50")},
		{Quantity: 1, Price: decimal.RequireFromString("99.99")},
	}

	totals := ComputeCartTotals(items)
	if !totals.Subtotal.Equal(decimal.RequireFromString("2600.99")) {
		t.Fatalf("unexpected subtotal %s", totals.Subtotal)
	}
	if !totals.Total.Equal(totals.Subtotal) {
		t.Fatalf("expected total to equal subtotal, got %s", totals.Total)
	}
	if !totals.Consistent() {
		t.Fatal("expected totals to be consistent")
	}
}

func TestNewTotalsFormula(t *testing.T) {
	t.Parallel()
	totals := NewTotals(
		decimal.NewFromInt(1000),
		decimal.NewFromInt(100),
		decimal.NewFromInt(60),
		decimal.RequireFromString("45.5"),
	)
	if !totals.Total.Equal(decimal.RequireFromString("1005.5")) {
		t.Fatalf("unexpected total %s", totals.Total)
	}

	totals.Total = totals.Total.Add(decimal.NewFromInt(1))
	if totals.Consistent() {
		t.Fatal("tampered total must not be consistent")
	}

	var order models.Order
	NewTotals(decimal.NewFromInt(10), decimal.Zero, decimal.Zero, decimal.Zero).Apply(&order)
	if !order.ComputedTotal().Equal(order.Total) {
		t.Fatalf("applied totals inconsistent: %s vs %s", order.ComputedTotal(), order.Total)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	email, err := NormalizeEmail("  Buyer@Example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "buyer@example.com" {
		t.Fatalf("unexpected email %q", email)
	}

	_, err = NormalizeEmail("   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != MsgEmailRequired {
		t.Fatalf("expected %q, got %v", MsgEmailRequired, err)
	}
	if _, err := NormalizeEmail("not-an-email"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalizeShipping(t *testing.T) {
	t.Parallel()
	blank := "  "
	addr, err := NormalizeShipping(types.AddressSnapshot{
		FullName:     " Rahim Uddin ",
		Phone:        "01700000000",
		AddressLine1: "House 12",
		AddressLine2: &blank,
		City:         "Dhaka",
	}, "Bangladesh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Country != "Bangladesh" || addr.FullName != "Rahim Uddin" || addr.AddressLine2 != nil {
		t.Fatalf("unexpected normalized address %+v", addr)
	}

	_, err = NormalizeShipping(types.AddressSnapshot{FullName: "Rahim"}, "Bangladesh")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != MsgShippingRequired {
		t.Fatalf("expected %q, got %v", MsgShippingRequired, err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || len(details["missing"].([]string)) != 3 {
		t.Fatalf("expected three missing fields, got %#v", typed.Details())
	}
}

func TestResolvePaymentMethod(t *testing.T) {
	t.Parallel()
	method, err := ResolvePaymentMethod("", "cod")
	if err != nil || method != enums.PaymentMethodCOD {
		t.Fatalf("expected cod default, got %q (%v)", method, err)
	}
	if _, err := ResolvePaymentMethod("bitcoin", "cod"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
