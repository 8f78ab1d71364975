package validators

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const maxFormMemory = 1 << 20

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// DecodeForm fills dest from an urlencoded or multipart body using `form` tags
// and then runs struct validation. Supported field kinds are strings, ints,
// bools, uuid.UUID, decimal.Decimal and pointers to those.
func DecodeForm(r *http.Request, dest any) error {
	if err := parseForm(r); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, "form destination must be a struct pointer")
	}
	elem := rv.Elem()
	typ := elem.Type()

	fieldErrs := map[string]string{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			continue
		}
		if err := setField(elem.Field(i), raw); err != nil {
			fieldErrs[name] = err.Error()
		}
	}
	if len(fieldErrs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(fieldErrs)
	}

	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func setField(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Pointer {
		ptr := reflect.New(v.Type().Elem())
		if err := setField(ptr.Elem(), raw); err != nil {
			return err
		}
		v.Set(ptr)
		return nil
	}

	switch v.Type() {
	case uuidType:
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("must be a valid id")
		}
		v.Set(reflect.ValueOf(id))
		return nil
	case decimalType:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		v.Set(reflect.ValueOf(d))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("must be a whole number")
		}
		v.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			b = raw == "on"
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("unsupported field")
	}
	return nil
}
