package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Profile is the account record consulted by the admin guard.
type Profile struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email     string            `gorm:"column:email;not null" json:"email"`
	FullName  *string           `gorm:"column:full_name" json:"full_name,omitempty"`
	Role      enums.ProfileRole `gorm:"column:role;type:profile_role;not null;default:'customer'" json:"role"`
	IsActive  bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"column:deleted_at;index" json:"-"`
}
