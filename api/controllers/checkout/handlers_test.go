package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	result *checkoutsvc.PlaceResult
	err    error
	last   checkoutsvc.PlaceOrderInput
	calls  int
}

func (s *stubCheckoutService) Place(_ context.Context, input checkoutsvc.PlaceOrderInput) (*checkoutsvc.PlaceResult, error) {
	s.calls++
	s.last = input
	return s.result, s.err
}

func (s *stubCheckoutService) PlaceManual(context.Context, checkoutsvc.ManualOrderInput) (*models.Order, error) {
	return nil, nil
}

func placeRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"intent":         {"place_order"},
		"email":          {"Rina@Example.com"},
		"phone":          {"01711000000"},
		"full_name":      {"Rina Akter"},
		"address_line_1": {"House 4, Road 7"},
		"city":           {"Dhaka"},
		"payment_method": {"cod"},
	}
}

func TestPlaceOrderCreated(t *testing.T) {
	orderID := uuid.New()
	svc := &stubCheckoutService{result: &checkoutsvc.PlaceResult{OrderID: orderID, OrderNumber: "ORD-20261019-000001"}}
	session := uuid.NewString()

	req := placeRequest(validForm())
	req = req.WithContext(middleware.WithCartSession(req.Context(), session))
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data checkoutsvc.PlaceResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.OrderID != orderID || envelope.Data.OrderNumber != "ORD-20261019-000001" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if svc.last.Identity.SessionID != session {
		t.Fatalf("expected guest identity, got %+v", svc.last.Identity)
	}
	if svc.last.Shipping.FullName != "Rina Akter" || svc.last.Shipping.Phone != "01711000000" {
		t.Fatalf("unexpected shipping %+v", svc.last.Shipping)
	}
}

func TestPlaceOrderRejectsWrongIntent(t *testing.T) {
	svc := &stubCheckoutService{}
	values := validForm()
	values.Set("intent", "apply_coupon")

	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil, nil).ServeHTTP(resp, placeRequest(values))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("service must not be called")
	}
}

func TestPlaceOrderItemsNotSavedSurfacesMessage(t *testing.T) {
	cause := fmt.Errorf("%w: %w", checkoutsvc.ErrItemsNotSaved, fmt.Errorf("insert order_items"))
	svc := &stubCheckoutService{err: pkgerrors.Wrap(pkgerrors.CodeDependency, cause, checkoutsvc.MsgItemsNotSaved)}

	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil, nil).ServeHTTP(resp, placeRequest(validForm()))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Message != checkoutsvc.MsgItemsNotSaved {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}

func TestPlaceOrderFallsBackToAccountEmail(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.PlaceResult{OrderID: uuid.New(), OrderNumber: "ORD-20261019-000002"}}
	values := validForm()
	values.Set("email", "  ")

	req := placeRequest(values)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithUserEmail(ctx, "member@example.com")
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil, nil).ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.last.Email != "member@example.com" {
		t.Fatalf("expected account email, got %q", svc.last.Email)
	}
	if svc.last.Identity.UserID == nil {
		t.Fatal("expected signed-in identity")
	}
}

func TestPlaceOrderPrefersTypedEmail(t *testing.T) {
	svc := &stubCheckoutService{result: &checkoutsvc.PlaceResult{OrderID: uuid.New()}}

	req := placeRequest(validForm())
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithUserEmail(ctx, "member@example.com")
	PlaceOrder(svc, nil, nil).ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	if svc.last.Email != "Rina@Example.com" {
		t.Fatalf("typed email should win, got %q", svc.last.Email)
	}
}

func TestPlaceOrderMintsCartCookieForNewGuest(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty.")}
	cookies := middleware.NewCartCookies(config.CartConfig{CookieName: "cart_session_id", CookieMaxAge: time.Hour}, false)

	resp := httptest.NewRecorder()
	PlaceOrder(svc, cookies, nil).ServeHTTP(resp, placeRequest(validForm()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var minted *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "cart_session_id" {
			minted = c
		}
	}
	if minted == nil || minted.Value == "" {
		t.Fatal("expected a cart session cookie")
	}
	if svc.last.Identity.SessionID != minted.Value {
		t.Fatalf("service should see the minted session, got %+v", svc.last.Identity)
	}
}
