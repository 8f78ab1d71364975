package redis

import (
	"context"
	"fmt"
	"time"
)

// dayCounterTTL keeps yesterday's order number counter alive across the UTC
// boundary for late retries.
const dayCounterTTL = 48 * time.Hour

// incrExpiring increments key and arms ttl on the first hit only, so a busy
// window is not extended by its own traffic.
func (c *Client) incrExpiring(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	cmd, err := c.commands()
	if err != nil {
		return 0, err
	}
	n, err := cmd.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 && ttl > 0 {
		if err := cmd.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n, nil
}

// FixedWindowAllow counts a hit against scope and reports whether the
// count is still within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	n, err := c.incrExpiring(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return n <= limit, n, nil
}

// DailySequence returns the next value of the named counter for day's UTC date.
func (c *Client) DailySequence(ctx context.Context, name string, day time.Time) (int64, error) {
	return c.incrExpiring(ctx, c.CounterKey(name+":"+day.UTC().Format(dayKeyLayout)), dayCounterTTL)
}
