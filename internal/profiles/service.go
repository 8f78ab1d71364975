package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Service answers who a caller is and whether they may administer orders.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	RequireAdmin(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type service struct {
	profiles reader
}

func NewService(profiles reader) (Service, error) {
	if profiles == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{profiles: profiles}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

// RequireAdmin returns the profile when it is an active admin or super admin.
// A missing, deleted or inactive profile is FORBIDDEN, never NOT_FOUND.
func (s *service) RequireAdmin(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
		}
		return nil, err
	}
	if !profile.IsActive || !profile.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return profile, nil
}
