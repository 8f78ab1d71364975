// Package tracking serves the public order-tracking page.
package tracking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgOrderNumberRequired = "Please enter your order number."
	MsgEmailRequired       = "Please enter the email used for the order."
	msgNotFound            = "We could not find an order matching those details."
)

type orderReader interface {
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStateHistory, error)
}

type limiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LookupInput is what the track-order form submits. UserID is set when the
// caller is signed in.
type LookupInput struct {
	OrderNumber string
	Email       string
	UserID      *uuid.UUID
	ClientIP    string
}

// Result is the order as shown on the tracking page.
type Result struct {
	Order     *models.Order              `json:"order"`
	Items     []models.OrderItem         `json:"items"`
	Shipments []models.Shipment          `json:"shipments"`
	History   []models.OrderStateHistory `json:"history"`
}

// Service looks orders up for their owners.
type Service interface {
	Lookup(ctx context.Context, input LookupInput) (*Result, error)
}

type service struct {
	orders  orderReader
	limiter limiter
	limits  config.RateLimitConfig
	logg    *logger.Logger
}

// NewService wires tracking. A nil limiter disables guest throttling.
func NewService(orders orderReader, lim limiter, limits config.RateLimitConfig, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{orders: orders, limiter: lim, limits: limits, logg: logg}, nil
}

// Lookup finds an order by number. Signed-in callers must own it; guests must
// know the email it was placed with. Every mismatch looks like a missing order.
func (s *service) Lookup(ctx context.Context, input LookupInput) (*Result, error) {
	number := strings.ToUpper(strings.TrimSpace(input.OrderNumber))
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgOrderNumberRequired)
	}
	signedIn := input.UserID != nil && *input.UserID != uuid.Nil
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !signedIn && email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgEmailRequired)
	}
	if !signedIn {
		if err := s.throttle(ctx, input.ClientIP, email); err != nil {
			return nil, err
		}
	}

	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	owned := false
	if signedIn {
		owned = order.UserID != nil && *order.UserID == *input.UserID
		if !owned && email != "" {
			owned = strings.EqualFold(order.Email, email)
		}
	} else {
		owned = strings.EqualFold(strings.TrimSpace(order.Email), email)
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
	}

	history, err := s.orders.ListHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}

	items, shipments := order.Items, order.Shipments
	if items == nil {
		items = []models.OrderItem{}
	}
	if shipments == nil {
		shipments = []models.Shipment{}
	}
	order.Items, order.Shipments = nil, nil
	return &Result{Order: order, Items: items, Shipments: shipments, History: history}, nil
}

// throttle applies per-IP and per-email fixed windows. Redis failures let the
// lookup through.
func (s *service) throttle(ctx context.Context, ip, email string) error {
	if s.limiter == nil || s.limits.TrackWindow <= 0 {
		return nil
	}
	checks := []struct {
		scope string
		limit int
	}{
		{"track:ip:" + strings.TrimSpace(ip), s.limits.TrackIPLimit},
		{"track:email:" + hashEmail(email), s.limits.TrackEmailLimit},
	}
	for _, check := range checks {
		if check.limit <= 0 || strings.HasSuffix(check.scope, ":") {
			continue
		}
		allowed, count, err := s.limiter.FixedWindowAllow(ctx, check.scope, int64(check.limit), s.limits.TrackWindow)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "tracking rate limit unavailable")
			return nil
		}
		if !allowed {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{"scope": check.scope, "count": count}), "tracking lookup throttled")
			return pkgerrors.New(pkgerrors.CodeRateLimit, "Too many lookups. Please try again later.")
		}
	}
	return nil
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}
