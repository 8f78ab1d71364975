package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = UserIDFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.ProfileRoleCustomer)
	handler := Auth(testJWT, stubSessionVerifier{ok: false}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.ProfileRoleAdmin)

	var role, user, email string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		role = RoleFromContext(r.Context())
		email = UserEmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, user)
	}
	if role != string(enums.ProfileRoleAdmin) {
		t.Fatalf("expected role admin got %s", role)
	}
	if email != "someone@example.com" {
		t.Fatalf("expected email claim in context, got %q", email)
	}
}

func TestOptionalAuthTreatsBadTokenAsGuest(t *testing.T) {
	var user string
	handler := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected guest pass-through, got %d", resp.Code)
	}
	if user != "" {
		t.Fatalf("expected no user, got %s", user)
	}
}

func TestOptionalAuthAttachesUser(t *testing.T) {
	userID := uuid.New()
	token := mintTestToken(t, userID, enums.ProfileRoleCustomer)

	var user string
	handler := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, user)
	}
}

func TestOptionalAuthSurfacesSessionStoreOutage(t *testing.T) {
	token := mintTestToken(t, uuid.New(), enums.ProfileRoleCustomer)
	handler := OptionalAuth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	adminID := uuid.New()
	checker := stubAdminChecker{admins: map[uuid.UUID]bool{adminID: true}}

	tests := []struct {
		name string
		ctx  func(context.Context) context.Context
		want int
	}{
		{"guest", func(ctx context.Context) context.Context { return ctx }, http.StatusUnauthorized},
		{"customer", func(ctx context.Context) context.Context { return WithUserID(ctx, uuid.NewString()) }, http.StatusForbidden},
		{"admin", func(ctx context.Context) context.Context { return WithUserID(ctx, adminID.String()) }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			resp := httptest.NewRecorder()
			RequireAdmin(checker, nil)(okHandler(nil)).ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, resp.Code)
			}
		})
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.ProfileRole) string {
	t.Helper()
	payload := auth.AccessTokenPayload{
		UserID: userID,
		Email:  "someone@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	}
	token, err := auth.MintAccessToken(testJWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

type stubAdminChecker struct {
	admins map[uuid.UUID]bool
}

func (s stubAdminChecker) RequireAdmin(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if !s.admins[id] {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return &models.Profile{ID: id, Role: enums.ProfileRoleAdmin}, nil
}
