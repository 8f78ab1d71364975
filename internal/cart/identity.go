package cart

import (
	"strings"

	"github.com/google/uuid"
)

// Identity names the owner of a cart: a signed-in user or a guest cookie session.
type Identity struct {
	UserID    *uuid.UUID
	SessionID string
}

// IsZero reports whether neither a user nor a guest session is known.
func (i Identity) IsZero() bool {
	return (i.UserID == nil || *i.UserID == uuid.Nil) && strings.TrimSpace(i.SessionID) == ""
}

// IsGuest reports whether the cart is keyed by session only.
func (i Identity) IsGuest() bool {
	return (i.UserID == nil || *i.UserID == uuid.Nil) && strings.TrimSpace(i.SessionID) != ""
}

// NewSessionID mints a guest cart session id.
func NewSessionID() string {
	return uuid.NewString()
}
