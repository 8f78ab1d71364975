package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

var jsonNull = []byte("null")

// NullableString distinguishes an absent JSON field from an explicit null.
// Absent leaves Valid false. null sets Valid with a nil Value, meaning clear.
type NullableString struct {
	Valid bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return nil
	case bytes.Equal(data, jsonNull):
		*n = NullableString{Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = NullableString{Valid: true, Value: &s}
	return nil
}

// Normalized trims the value. A blank string becomes an explicit clear.
func (n NullableString) Normalized() NullableString {
	if !n.Valid || n.Value == nil {
		return n
	}
	if v := strings.TrimSpace(*n.Value); v != "" {
		return NullableString{Valid: true, Value: &v}
	}
	return NullableString{Valid: true}
}
