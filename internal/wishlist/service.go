package wishlist

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type store interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error)
	ProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type productReader interface {
	FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes business rules for wishlist management.
type Service interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error)
	ProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	items    store
	products productReader
}

// NewService builds a wishlist service with the required dependencies.
func NewService(items store, products productReader) (Service, error) {
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{items: items, products: products}, nil
}

// Toggle removes the product when it is already liked and adds it otherwise.
// Only active products can be added.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the wishlist")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	removed, err := s.items.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if removed {
		return &ToggleResult{ProductID: productID, Liked: false}, nil
	}

	if _, err := s.products.FindActive(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.items.AddItem(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return &ToggleResult{ProductID: productID, Liked: true}, nil
}

// List returns the paginated wishlist for a user.
func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[Item], error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the wishlist")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.items.ListItems(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return page, nil
}

// ProductIDs returns all liked product IDs for the user.
func (s *service) ProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the wishlist")
	}
	ids, err := s.items.ProductIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist ids")
	}
	return ids, nil
}
