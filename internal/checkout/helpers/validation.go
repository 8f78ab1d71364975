package helpers

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const (
	MsgCartEmpty        = "Your cart is empty."
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Please enter a valid email address."
	MsgShippingRequired = "Please complete your shipping address."
)

// NormalizeEmail trims and lowercases the address and checks it parses.
func NormalizeEmail(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, MsgEmailRequired)
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, MsgEmailInvalid)
	}
	return email, nil
}

// NormalizeShipping trims every field, applies the default country and
// reports missing required fields.
func NormalizeShipping(addr types.AddressSnapshot, defaultCountry string) (types.AddressSnapshot, error) {
	out := types.AddressSnapshot{
		FullName:     strings.TrimSpace(addr.FullName),
		Phone:        strings.TrimSpace(addr.Phone),
		AddressLine1: strings.TrimSpace(addr.AddressLine1),
		AddressLine2: trimmedOrNil(addr.AddressLine2),
		City:         strings.TrimSpace(addr.City),
		State:        trimmedOrNil(addr.State),
		PostalCode:   trimmedOrNil(addr.PostalCode),
		Country:      strings.TrimSpace(addr.Country),
	}
	if out.Country == "" {
		out.Country = strings.TrimSpace(defaultCountry)
	}
	if missing := out.MissingRequired(); len(missing) > 0 {
		return out, pkgerrors.New(pkgerrors.CodeValidation, MsgShippingRequired).
			WithDetails(map[string]any{"missing": missing})
	}
	return out, nil
}

// ResolvePaymentMethod falls back to the configured default.
func ResolvePaymentMethod(value, fallback string) (enums.PaymentMethod, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		raw = fallback
	}
	method, err := enums.ParsePaymentMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return method, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
