package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// SystemActivityLog records admin-visible actions for the back-office feed.
type SystemActivityLog struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActivityType    enums.ActivityType `gorm:"column:activity_type;not null" json:"activity_type"`
	EntityType      string             `gorm:"column:entity_type;not null" json:"entity_type"`
	EntityID        *uuid.UUID         `gorm:"column:entity_id;type:uuid" json:"entity_id,omitempty"`
	ActorUserID     *uuid.UUID         `gorm:"column:actor_user_id;type:uuid" json:"actor_user_id,omitempty"`
	ActivitySummary string             `gorm:"column:activity_summary;not null" json:"activity_summary"`
	ChangesSnapshot types.JSONMap      `gorm:"column:changes_snapshot;type:jsonb;serializer:json" json:"changes_snapshot,omitempty"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SystemActivityLog) TableName() string { return "system_activity_log" }
