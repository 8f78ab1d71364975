package activity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	EntityOrder  = "order"
	EntityRefund = "refund"
)

// Entry describes one admin-visible action.
type Entry struct {
	Type       enums.ActivityType
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Summary    string
	Changes    types.JSONMap
}

type store interface {
	Insert(ctx context.Context, row *models.SystemActivityLog) error
	ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]models.SystemActivityLog, error)
}

// Service writes the system activity log.
type Service struct {
	repo store
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo store, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Record inserts the entry and reports failures to the caller.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if s == nil || s.repo == nil {
		return errors.New("activity log not configured")
	}
	if !entry.Type.IsValid() {
		return errors.New("invalid activity type")
	}
	if strings.TrimSpace(entry.EntityType) == "" {
		return errors.New("entity type required")
	}
	row := &models.SystemActivityLog{
		ID:              uuid.New(),
		ActivityType:    entry.Type,
		EntityType:      entry.EntityType,
		ActorUserID:     entry.ActorID,
		ActivitySummary: entry.Summary,
		ChangesSnapshot: entry.Changes,
		CreatedAt:       s.now().UTC(),
	}
	if entry.EntityID != uuid.Nil {
		id := entry.EntityID
		row.EntityID = &id
	}
	return s.repo.Insert(ctx, row)
}

// Log records the entry and only logs failures. Activity rows never block the
// primary write that triggered them.
func (s *Service) Log(ctx context.Context, entry Entry) {
	if err := s.Record(ctx, entry); err != nil && s != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"activity_type": entry.Type,
			"entity_type":   entry.EntityType,
			"entity_id":     entry.EntityID.String(),
		})
		s.logg.Warn(logCtx, "activity log write failed: "+err.Error())
	}
}

// ListForOrder returns the activity feed for an order.
func (s *Service) ListForOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.SystemActivityLog, error) {
	return s.repo.ListForEntity(ctx, EntityOrder, orderID, limit)
}
