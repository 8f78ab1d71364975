package enums

import (
	"fmt"
	"slices"
)

func parseEnum[T ~string](kind string, all []T, raw string) (T, error) {
	if v := T(raw); slices.Contains(all, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
