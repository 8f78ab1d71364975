package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// ListFilters narrows the admin order list.
type ListFilters struct {
	State  *enums.OrderState
	UserID *uuid.UUID
	Search string
}

// TransitionInput moves an order to ToState. When FromState is set the call
// only succeeds if the order is still in that state.
type TransitionInput struct {
	OrderID   uuid.UUID
	FromState *enums.OrderState
	ToState   enums.OrderState
	ChangedBy *uuid.UUID
	Reason    *string
	Notes     *string
	Metadata  types.JSONMap

	extra map[string]any
}

// TransitionResult is the order after the write plus the history row appended.
type TransitionResult struct {
	Order   *models.Order
	History *models.OrderStateHistory
}

type HoldInput struct {
	OrderID uuid.UUID
	Reason  string
	Until   *time.Time
	ActorID *uuid.UUID
}

type ReleaseInput struct {
	OrderID uuid.UUID
	Notes   *string
	ActorID *uuid.UUID
}

// NotesInput edits the free-text notes. Absent fields are left alone and an
// explicit null clears the column.
type NotesInput struct {
	OrderID       uuid.UUID
	InternalNotes types.NullableString
	CustomerNotes types.NullableString
	ActorID       *uuid.UUID
}
