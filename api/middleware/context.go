package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/cart"
)

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxRole        contextKey = "actor_role"
	ctxCartSession contextKey = "cart_session_id"
	ctxClientIP    contextKey = "client_ip"
	ctxUserEmail   contextKey = "user_email"
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxUserID) }
func RoleFromContext(ctx context.Context) string { return stringValue(ctx, ctxRole) }
func CartSessionFromContext(ctx context.Context) string { return stringValue(ctx, ctxCartSession) }

// UserEmailFromContext is the email claim of the signed-in caller, if any.
func UserEmailFromContext(ctx context.Context) string { return stringValue(ctx, ctxUserEmail) }

// ClientIPFromContext is the host part of the caller address after RealIP.
func ClientIPFromContext(ctx context.Context) string { return stringValue(ctx, ctxClientIP) }

// UserUUIDFromContext returns the signed-in user, or nil for guests.
func UserUUIDFromContext(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithUserEmail(ctx context.Context, email string) context.Context {
	return withString(ctx, ctxUserEmail, email)
}

func WithCartSession(ctx context.Context, sessionID string) context.Context {
	return withString(ctx, ctxCartSession, sessionID)
}

// CartIdentity names the cart owner: the signed-in user when present, plus
// the guest cookie session.
func CartIdentity(ctx context.Context) cart.Identity {
	return cart.Identity{
		UserID:    UserUUIDFromContext(ctx),
		SessionID: CartSessionFromContext(ctx),
	}
}
