package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/activity"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/email"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	resultSuccess       = "success"
	resultValidation    = "validation"
	resultItemsNotSaved = "items_not_saved"
	resultError         = "error"

	historyReasonPlaced = "Order placed"
	historyReasonManual = "Manual order created"

	// maxNumberAttempts bounds retries when a generated order number collides.
	maxNumberAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Get(ctx context.Context, identity cart.Identity) (*models.Cart, error)
	ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type productLookup interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type activityLogger interface {
	Log(ctx context.Context, entry activity.Entry)
}

// Options carries the storefront settings checkout needs.
type Options struct {
	Checkout     config.CheckoutConfig
	PublicURL    string
	SupportEmail string
}

// Service places storefront and manual orders.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*PlaceResult, error)
	PlaceManual(ctx context.Context, input ManualOrderInput) (*models.Order, error)
}

type service struct {
	orders   orders.Repository
	carts    cartReader
	products productLookup
	numbers  NumberGenerator
	tx       txRunner
	mailer   email.Mailer
	activity activityLogger
	opts     Options
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Orders   orders.Repository
	Carts    cartReader
	Products productLookup
	Numbers  NumberGenerator
	Tx       txRunner
	Mailer   email.Mailer
	Activity activityLogger
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
}

// NewService builds the checkout service.
func NewService(deps Deps, opts Options) (Service, error) {
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if deps.Numbers == nil {
		return nil, fmt.Errorf("order number generator required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if deps.Activity == nil {
		return nil, fmt.Errorf("activity logger required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:   deps.Orders,
		carts:    deps.Carts,
		products: deps.Products,
		numbers:  deps.Numbers,
		tx:       deps.Tx,
		mailer:   deps.Mailer,
		activity: deps.Activity,
		opts:     opts,
		logg:     deps.Logger,
		metrics:  deps.Metrics,
		now:      time.Now,
	}, nil
}

// Place turns the caller's cart into an order. Everything is validated before
// the first write. The order row commits on its own; items, payment stub,
// initial history and cart clearing commit together afterwards. The cart is
// only emptied when that second unit succeeds.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (result *PlaceResult, err error) {
	started := s.now()
	defer func() {
		s.metrics.ObserveOrder(placeResultLabel(err), s.now().Sub(started))
	}()

	if input.Identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, helpers.MsgCartEmpty)
	}
	current, err := s.carts.Get(ctx, input.Identity)
	if err != nil {
		return nil, err
	}
	if current.ID == uuid.Nil || len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, helpers.MsgCartEmpty)
	}
	emailAddr, err := helpers.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	shipping, err := helpers.NormalizeShipping(input.Shipping, s.opts.Checkout.DefaultCountry)
	if err != nil {
		return nil, err
	}
	method, err := helpers.ResolvePaymentMethod(input.PaymentMethod, s.opts.Checkout.DefaultPaymentMethod)
	if err != nil {
		return nil, err
	}

	totals := helpers.ComputeCartTotals(current.Items)
	if !totals.Subtotal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, helpers.MsgCartEmpty)
	}

	order := &models.Order{
		UserID:        input.Identity.UserID,
		Email:         emailAddr,
		Phone:         stringOrNil(firstNonEmpty(input.Phone, shipping.Phone)),
		Status:        enums.OrderStatusPending,
		CurrentState:  enums.OrderStatePending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: method,
		Source:        enums.OrderSourceWeb,
		Currency:      s.opts.Checkout.Currency,
		Shipping:      shipping,
		Billing:       shipping,
		CustomerNotes: trimmedOrNil(input.Notes),
	}
	totals.Apply(order)
	if !order.ComputedTotal().Equal(order.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order totals are inconsistent")
	}

	if err := s.insertOrder(ctx, order); err != nil {
		return nil, err
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	items := orderItemsFromCart(order.ID, current.Items)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if err := repo.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		if err := repo.CreatePayment(ctx, paymentStub(order)); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := repo.AppendHistory(ctx, initialHistory(order, input.Identity.UserID, historyReasonPlaced, enums.OrderSourceWeb, s.now().UTC())); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return s.carts.ClearTx(ctx, tx, current.ID)
	})
	if err != nil {
		s.logg.Error(ctx, "order created but items failed to save", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%w: %w", ErrItemsNotSaved, err), MsgItemsNotSaved).
			WithDetails(map[string]any{
				"order_id":     order.ID,
				"order_number": order.OrderNumber,
			})
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"total":        order.Total.StringFixed(2),
		"items":        len(items),
	}), "order placed")

	order.Items = items
	s.sendOrderEmails(ctx, order)

	return &PlaceResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// PlaceManual records an admin-entered order with explicit prices. All rows
// are written in a single transaction.
func (s *service) PlaceManual(ctx context.Context, input ManualOrderInput) (*models.Order, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	emailAddr, err := helpers.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	shipping, err := helpers.NormalizeShipping(input.Shipping, s.opts.Checkout.DefaultCountry)
	if err != nil {
		return nil, err
	}
	billing := shipping
	if input.Billing != nil {
		if billing, err = helpers.NormalizeShipping(*input.Billing, s.opts.Checkout.DefaultCountry); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please complete the billing address.")
		}
	}
	method, err := helpers.ResolvePaymentMethod(input.PaymentMethod, s.opts.Checkout.DefaultPaymentMethod)
	if err != nil {
		return nil, err
	}
	for _, amount := range []decimal.Decimal{input.Discount, input.ShippingCost, input.Tax} {
		if amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amounts must not be negative")
		}
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil || item.Quantity < 1 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d] needs a product and a quantity of at least 1", i)
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].unit_price must not be negative", i)
		}
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.products.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	subtotal := decimal.Zero
	for i, item := range input.Items {
		if _, ok := catalog[item.ProductID]; !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d] product is not available", i)
		}
		subtotal = subtotal.Add(item.UnitPrice.Round(2).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	totals := helpers.NewTotals(subtotal, input.Discount, input.ShippingCost, input.Tax)
	if totals.Total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
	}

	actor := input.ActorID
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        input.CustomerID,
		Email:         emailAddr,
		Phone:         stringOrNil(firstNonEmpty(input.Phone, shipping.Phone)),
		Status:        enums.OrderStatusPending,
		CurrentState:  enums.OrderStatePending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: method,
		Source:        enums.OrderSourceManual,
		Currency:      s.opts.Checkout.Currency,
		Shipping:      shipping,
		Billing:       billing,
		CustomerNotes: trimmedOrNil(input.CustomerNotes),
		InternalNotes: trimmedOrNil(input.InternalNotes),
		CreatedBy:     &actor,
	}
	totals.Apply(order)

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate order number")
	}
	order.OrderNumber = number

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product := catalog[item.ProductID]
		productID := product.ID
		unit := item.UnitPrice.Round(2)
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			TotalPrice:  unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := repo.CreatePayment(ctx, paymentStub(order)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		if err := repo.AppendHistory(ctx, initialHistory(order, &actor, historyReasonManual, enums.OrderSourceManual, s.now().UTC())); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	s.activity.Log(ctx, activity.Entry{
		Type:       enums.ActivityManualOrderCreated,
		EntityType: activity.EntityOrder,
		EntityID:   order.ID,
		ActorID:    &actor,
		Summary:    fmt.Sprintf("Manual order %s created", order.OrderNumber),
		Changes: types.JSONMap{
			"total": order.Total.StringFixed(2),
			"items": len(items),
		},
	})
	return order, nil
}

// insertOrder allocates an order number and inserts the header, retrying on
// number collisions.
func (s *service) insertOrder(ctx context.Context, order *models.Order) error {
	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := s.numbers.Next(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate order number")
		}
		order.ID = uuid.New()
		order.OrderNumber = number
		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		lastErr = err
		if !db.IsUniqueViolation(err, "") {
			break
		}
		s.logg.Warn(s.logg.WithField(ctx, "order_number", number), "order number collision, retrying")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "Could not create the order. Please try again.")
}

// sendOrderEmails delivers the confirmation and invoice. Failures are logged
// and never fail the checkout.
func (s *service) sendOrderEmails(ctx context.Context, order *models.Order) {
	data := s.emailData(order)
	var errs error
	for _, render := range []func(email.OrderEmail) (email.Message, error){email.OrderConfirmation, email.Invoice} {
		msg, err := render(data)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, s.mailer.Send(ctx, msg))
	}
	if errs == nil {
		return
	}
	if errors.Is(errs, email.ErrNotConfigured) && len(multierr.Errors(errs)) == 2 {
		s.logg.Debug(ctx, "order emails skipped: delivery not configured")
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", errs.Error()), "order emails failed")
}

func (s *service) emailData(order *models.Order) email.OrderEmail {
	lines := make([]email.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		line := email.OrderLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			LineTotal: item.TotalPrice.StringFixed(2),
		}
		if item.VariantName != nil {
			line.Variant = *item.VariantName
		}
		lines = append(lines, line)
	}
	data := email.OrderEmail{
		To:            order.Email,
		CustomerName:  order.Shipping.FullName,
		OrderNumber:   order.OrderNumber,
		PlacedAt:      s.now().UTC().Format("2 Jan 2006"),
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod.String(),
		Lines:         lines,
		Subtotal:      order.Subtotal.StringFixed(2),
		Discount:      order.DiscountAmount.StringFixed(2),
		Shipping:      order.ShippingCost.StringFixed(2),
		Tax:           order.TaxAmount.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		ShippingTo:    order.Shipping.Lines(),
		SupportEmail:  s.opts.SupportEmail,
	}
	if base := strings.TrimRight(s.opts.PublicURL, "/"); base != "" {
		data.TrackURL = fmt.Sprintf("%s/track-order?order_number=%s", base, order.OrderNumber)
	}
	return data
}

func orderItemsFromCart(orderID uuid.UUID, lines []models.CartItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		productID := line.ProductID
		items = append(items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   &productID,
			VariantID:   line.VariantID,
			ProductName: line.ProductName,
			VariantName: line.VariantName,
			SKU:         line.SKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price.Round(2),
			TotalPrice:  line.LineTotal().Round(2),
		})
	}
	return items
}

func paymentStub(order *models.Order) *models.Payment {
	return &models.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		PaymentMethod: order.PaymentMethod,
		Amount:        order.Total,
		Currency:      order.Currency,
		Status:        enums.PaymentStatusPending,
	}
}

func initialHistory(order *models.Order, actor *uuid.UUID, reason string, channel enums.OrderSource, at time.Time) *models.OrderStateHistory {
	return &models.OrderStateHistory{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ToState:   enums.OrderStatePending,
		ChangedBy: actor,
		Reason:    &reason,
		Metadata:  types.JSONMap{"channel": channel.String()},
		ChangedAt: at,
	}
}

func placeResultLabel(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrItemsNotSaved):
		return resultItemsNotSaved
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		return resultValidation
	}
	return resultError
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

func stringOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
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
