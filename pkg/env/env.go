// Package env reads the few process settings that live outside the
// STOREFRONT_ config, such as LOG_FORMAT.
package env

import (
	"os"
	"strconv"
	"strings"
)

// lookup treats a blank value the same as an unset one.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func Get(key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

// Bool falls back on malformed values as well as missing ones.
func Bool(key string, fallback bool) bool {
	v, ok := lookup(key)
	if !ok {
		return fallback
	}
	if parsed, err := strconv.ParseBool(v); err == nil {
		return parsed
	}
	return fallback
}
