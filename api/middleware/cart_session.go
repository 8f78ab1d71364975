package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/google/uuid"
)

// CartCookies reads and mints the guest cart session cookie.
type CartCookies struct {
	cfg    config.CartConfig
	secure bool
}

func NewCartCookies(cfg config.CartConfig, secure bool) *CartCookies {
	if cfg.CookieName == "" {
		cfg.CookieName = "cart_session_id"
	}
	return &CartCookies{cfg: cfg, secure: secure}
}

// Middleware copies a well-formed cart cookie into the request context.
func (c *CartCookies) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(c.cfg.CookieName); err == nil {
			if id := strings.TrimSpace(cookie.Value); id != "" {
				if _, err := uuid.Parse(id); err == nil {
					r = r.WithContext(WithCartSession(r.Context(), id))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Ensure returns the request's cart session, minting and setting a new cookie
// when there is none. Call it only on writes.
func (c *CartCookies) Ensure(w http.ResponseWriter, r *http.Request) (string, *http.Request) {
	if id := CartSessionFromContext(r.Context()); id != "" {
		return id, r
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     c.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.cfg.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, r.WithContext(WithCartSession(r.Context(), id))
}
