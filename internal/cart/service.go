package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intent is the form action posted by the storefront cart page.
type Intent string

const (
	IntentAdd    Intent = "add"
	IntentUpdate Intent = "update"
	IntentRemove Intent = "remove"
	IntentClear  Intent = "clear"
)

// ParseIntent validates the posted intent.
func ParseIntent(value string) (Intent, error) {
	switch Intent(strings.TrimSpace(value)) {
	case IntentAdd:
		return IntentAdd, nil
	case IntentUpdate:
		return IntentUpdate, nil
	case IntentRemove:
		return IntentRemove, nil
	case IntentClear:
		return IntentClear, nil
	}
	return "", pkgerrors.Newf(pkgerrors.CodeValidation, "unknown cart intent %q", value)
}

// ActionInput carries the fields used by every cart intent. Unused fields are ignored.
type ActionInput struct {
	Intent    Intent
	ProductID uuid.UUID
	VariantID *uuid.UUID
	ItemID    uuid.UUID
	Quantity  int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the storefront cart.
type Service interface {
	Get(ctx context.Context, identity Identity) (*models.Cart, error)
	GetOrCreate(ctx context.Context, identity Identity) (*models.Cart, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	Apply(ctx context.Context, identity Identity, input ActionInput) (*models.Cart, error)
	// ClearTx empties the cart inside a caller-owned transaction.
	ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type service struct {
	carts    CartRepository
	items    ItemRepository
	products productReader
	tx       txRunner
	logg     *logger.Logger
}

// NewService wires the cart service.
func NewService(carts CartRepository, items ItemRepository, products productReader, tx txRunner, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("cart item repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carts: carts, items: items, products: products, tx: tx, logg: logg}, nil
}

// Get returns the caller's cart with items. A caller without a cart gets an
// empty, unsaved cart.
func (s *service) Get(ctx context.Context, identity Identity) (*models.Cart, error) {
	if identity.IsZero() {
		return &models.Cart{Items: []models.CartItem{}}, nil
	}
	cart, err := s.find(ctx, s.carts, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{Items: []models.CartItem{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	items, err := s.items.ListForCart(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	cart.Items = items
	return cart, nil
}

func (s *service) GetOrCreate(ctx context.Context, identity Identity) (*models.Cart, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	var cart *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		cart, err = s.getOrCreate(ctx, s.carts.WithTx(tx), identity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) Items(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	items, err := s.items.ListForCart(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	return items, nil
}

// Apply runs one cart intent and returns the refreshed cart.
func (s *service) Apply(ctx context.Context, identity Identity, input ActionInput) (*models.Cart, error) {
	if identity.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	if err := validateAction(input); err != nil {
		return nil, err
	}

	var product *models.Product
	if input.Intent == IntentAdd {
		var err error
		product, err = s.products.FindActive(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not available")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
	}

	var cartID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := s.getOrCreate(ctx, s.carts.WithTx(tx), identity)
		if err != nil {
			return err
		}
		cartID = cart.ID
		items := s.items.WithTx(tx)

		switch input.Intent {
		case IntentAdd:
			return s.add(ctx, items, cart.ID, product, input)
		case IntentUpdate:
			rows, err := items.UpdateQuantity(ctx, cart.ID, input.ItemID, input.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
		case IntentRemove:
			rows, err := items.Delete(ctx, cart.ID, input.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
		case IntentClear:
			if err := items.ClearForCart(ctx, cart.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lines, err := s.Items(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return &models.Cart{ID: cartID, UserID: identity.UserID, Items: lines}, nil
}

func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	if err := s.items.WithTx(tx).ClearForCart(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// add snapshots the product's current base price and merges into an existing
// line for the same product and variant.
func (s *service) add(ctx context.Context, items ItemRepository, cartID uuid.UUID, product *models.Product, input ActionInput) error {
	existing, err := items.FindLine(ctx, cartID, product.ID, input.VariantID)
	switch {
	case err == nil:
		rows, err := items.UpdateQuantity(ctx, cartID, existing.ID, existing.Quantity+input.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	line := &models.CartItem{
		ID:          uuid.New(),
		CartID:      cartID,
		ProductID:   product.ID,
		VariantID:   input.VariantID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Quantity:    input.Quantity,
		Price:       product.BasePrice,
	}
	if err := items.Insert(ctx, line); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return nil
}

func (s *service) getOrCreate(ctx context.Context, carts CartRepository, identity Identity) (*models.Cart, error) {
	cart, err := s.find(ctx, carts, identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	cart = &models.Cart{ID: uuid.New()}
	if identity.IsGuest() {
		session := strings.TrimSpace(identity.SessionID)
		cart.SessionID = &session
	} else {
		cart.UserID = identity.UserID
	}
	if err := carts.Create(ctx, cart); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
		// A concurrent request created the cart first.
		existing, findErr := s.find(ctx, carts, identity)
		if findErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "reload cart")
		}
		return existing, nil
	}
	s.logg.Debug(s.logg.WithField(ctx, "cart_id", cart.ID.String()), "cart created")
	return cart, nil
}

func (s *service) find(ctx context.Context, carts CartRepository, identity Identity) (*models.Cart, error) {
	if identity.IsGuest() {
		return carts.FindBySession(ctx, identity.SessionID)
	}
	return carts.FindByUser(ctx, *identity.UserID)
}

func validateAction(input ActionInput) error {
	switch input.Intent {
	case IntentAdd:
		if input.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_id required")
		}
		if input.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
	case IntentUpdate:
		if input.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item_id required")
		}
		if input.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
	case IntentRemove:
		if input.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item_id required")
		}
	case IntentClear:
	default:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown cart intent %q", input.Intent)
	}
	return nil
}
