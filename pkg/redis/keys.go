package redis

import "strings"

// Every key the storefront writes lives under "sf:<kind>:...".
const (
	keyRoot      = "sf"
	kindIdem     = "idempotency"
	kindRate     = "rate_limit"
	kindCounter  = "counter"
	kindSession  = "session"
	dayKeyLayout = "20060102"
)

func joinKey(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(keyRoot)
	b.WriteByte(':')
	b.WriteString(kind)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

// IdempotencyKey namespaces a client supplied Idempotency-Key by route scope.
func (c *Client) IdempotencyKey(scope, id string) string {
	return joinKey(kindIdem, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return joinKey(kindRate, scope)
}

func (c *Client) CounterKey(name string) string {
	return joinKey(kindCounter, name)
}

// AccessSessionKey is keyed by the access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return joinKey(kindSession, "access", accessID)
}
