package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/cellroute/pkg/observability"
)

// Instrumented wraps a Cache and reports hits, misses and writes to the
// registered [observability.CacheHooks].
type Instrumented struct {
	Cache
}

// NewInstrumented wraps c.
func NewInstrumented(c Cache) Cache {
	return &Instrumented{Cache: c}
}

// Get implements [Cache].
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

// Set implements [Cache].
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType extracts the entry kind from a key produced by a [Keyer].
func keyType(key string) string {
	switch {
	case strings.Contains(key, "result:"):
		return "result"
	case strings.Contains(key, "artifact:"):
		return "artifact"
	}
	return "other"
}
