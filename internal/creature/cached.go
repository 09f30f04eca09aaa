package creature

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Atul17-std/pokemon-tracker/internal/platform/cache"
)

// KV is the part of a Redis client the cache needs.
type KV interface {
	cache.Getter
	cache.Setter
}

// CachedLookup serves creatures from Redis before asking next.
type CachedLookup struct {
	next Lookup
	kv   KV
	ttl  time.Duration
}

// NewCachedLookup wraps next with a Redis cache. A zero ttl never expires.
func NewCachedLookup(next Lookup, kv KV, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, kv: kv, ttl: ttl}
}

func cacheKey(id int) string {
	return fmt.Sprintf("creatures:%d", id)
}

// Fetch returns the cached creature or fetches and caches it. Cache errors
// are logged and bypassed.
func (l *CachedLookup) Fetch(ctx context.Context, id int) (Creature, error) {
	var c Creature
	err := cache.GetJSON(ctx, l.kv, cacheKey(id), &c)
	if err == nil {
		c.Source = SourceCache
		return c, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("creature cache read failed", "id", id, "error", err)
	}

	c, err = l.next.Fetch(ctx, id)
	if err != nil {
		return Creature{}, err
	}
	if err := cache.SetJSON(ctx, l.kv, cacheKey(id), c, l.ttl); err != nil {
		slog.Warn("creature cache write failed", "id", id, "error", err)
	}
	return c, nil
}
