package profiles

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProfileDTO is the transport shape of the signed-in account.
type ProfileDTO struct {
	ID       uuid.UUID         `json:"id"`
	Email    string            `json:"email"`
	FullName *string           `json:"full_name,omitempty"`
	Role     enums.ProfileRole `json:"role"`
	IsStaff  bool              `json:"is_staff"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		IsStaff:  p.Role.IsStaff(),
	}
}
