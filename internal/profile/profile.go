package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
)

// DefaultTTL is how long a fetched profile stays fresh.
const DefaultTTL = 15 * time.Minute

// Cache serves the authenticated user's profile, fetching it from the
// remote service at most once per TTL window. It is safe for concurrent use.
type Cache struct {
	api courtapi.Client
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	user      booking.User
	fetchedAt time.Time
}

// NewCache creates a profile cache with the default TTL.
func NewCache(api courtapi.Client) *Cache {
	return &Cache{
		api: api,
		ttl: DefaultTTL,
		now: time.Now,
	}
}

// Get returns the cached profile, fetching a fresh one if the cache is
// empty or expired. A fetch failure with a stale entry present returns the
// stale entry rather than the error.
func (c *Cache) Get(ctx context.Context) (booking.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.expired() {
		return c.user, nil
	}

	user, err := c.api.FetchProfile(ctx)
	if err != nil {
		if !c.fetchedAt.IsZero() {
			log.Warn("Profile refresh failed, serving stale entry", "error", err)
			return c.user, nil
		}
		return booking.User{}, fmt.Errorf("fetching profile: %w", err)
	}

	c.user = user
	c.fetchedAt = c.now()
	return c.user, nil
}

// Invalidate drops the cached entry so the next Get fetches fresh.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = booking.User{}
	c.fetchedAt = time.Time{}
}

func (c *Cache) expired() bool {
	if c.fetchedAt.IsZero() {
		return true
	}
	return c.now().Sub(c.fetchedAt) > c.ttl
}
