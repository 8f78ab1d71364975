package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/google/uuid"
)

func TestCartCookiesMiddlewareReadsValidCookie(t *testing.T) {
	cookies := NewCartCookies(config.CartConfig{CookieName: "cart_session_id", CookieMaxAge: time.Hour}, false)
	id := uuid.NewString()

	var seen string
	handler := cookies.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session_id", Value: id})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != id {
		t.Fatalf("expected %s got %q", id, seen)
	}

	seen = ""
	bad := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	bad.AddCookie(&http.Cookie{Name: "cart_session_id", Value: "not-a-uuid"})
	handler.ServeHTTP(httptest.NewRecorder(), bad)
	if seen != "" {
		t.Fatalf("malformed cookie should be ignored, got %q", seen)
	}
}

func TestCartCookiesEnsureMintsCookie(t *testing.T) {
	cookies := NewCartCookies(config.CartConfig{CookieName: "cart_session_id", CookieMaxAge: 30 * 24 * time.Hour}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	id, next := cookies.Ensure(resp, req)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid session, got %q", id)
	}
	if CartSessionFromContext(next.Context()) != id {
		t.Fatal("expected session on returned request")
	}

	set := resp.Result().Cookies()
	if len(set) != 1 {
		t.Fatalf("expected one cookie, got %d", len(set))
	}
	c := set[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("unexpected cookie attributes %+v", c)
	}
	if c.MaxAge != int((30 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected max age %d", c.MaxAge)
	}

	again := httptest.NewRecorder()
	id2, _ := cookies.Ensure(again, next)
	if id2 != id || len(again.Result().Cookies()) != 0 {
		t.Fatal("existing session must be reused without a new cookie")
	}
}
