package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
)

// DefaultCacheTTL bounds how stale a cached distance may be.
const DefaultCacheTTL = 5 * time.Minute

// Cache memoizes distance lookups for a short TTL. It is scoped to the
// service instance that constructed it, safe for concurrent use, and serves
// advisory data only; bind-time checks must go to the store.
type Cache struct {
	inner Oracle
	ttl   time.Duration

	mu   sync.RWMutex
	legs map[string]cachedLeg
}

type cachedLeg struct {
	leg     Leg
	expires time.Time
}

// NewCache wraps inner with a TTL distance cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewCache(inner Oracle, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		inner: inner,
		ttl:   ttl,
		legs:  make(map[string]cachedLeg),
	}
}

func (c *Cache) Distance(ctx context.Context, origin, dest model.Location, departAt time.Time) (Leg, error) {
	key := legKey(origin, dest)

	c.mu.RLock()
	entry, ok := c.legs[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.leg, nil
	}

	leg, err := c.inner.Distance(ctx, origin, dest, departAt)
	if err != nil {
		return leg, err
	}

	c.mu.Lock()
	c.legs[key] = cachedLeg{leg: leg, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return leg, nil
}

// OptimizeRoute is not cached: waypoint sets rarely repeat.
func (c *Cache) OptimizeRoute(ctx context.Context, waypoints []model.Location) (Route, error) {
	return c.inner.OptimizeRoute(ctx, waypoints)
}

func legKey(origin, dest model.Location) string {
	return fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", origin.Lat, origin.Lng, dest.Lat, dest.Lng)
}
