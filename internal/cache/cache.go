// Package cache defines the result-cache tiers used by the cache scenario.
// Values are encoded query results keyed by keys.Key.
package cache

import (
	"context"
	"time"
)

// Tier is one level of the result cache. Get reports ok=false on a miss.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}
