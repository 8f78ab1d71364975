package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

type adminChecker interface {
	RequireAdmin(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// RequireAdmin rejects callers whose stored profile is not an active admin.
// The token role is not trusted on its own.
func RequireAdmin(profiles adminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserUUIDFromContext(r.Context())
			if userID == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			profile, err := profiles.RequireAdmin(r.Context(), *userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := withString(r.Context(), ctxRole, string(profile.Role))
			if logg != nil {
				ctx = logg.WithActorRole(ctx, string(profile.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
