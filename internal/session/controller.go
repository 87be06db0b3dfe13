package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtsidehq/courtside/internal/actions"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
)

// Load fetches the booking aggregate and moves the session to loaded, or to
// error if the fetch fails. The current user's identity is backfilled from
// the profile cache when it is missing; a profile failure is not fatal, it
// only degrades the role-aware flags.
func (c *Controller) Load(ctx context.Context, bookingID string, view courtapi.View) error {
	c.mu.Lock()
	c.state = StateLoading
	c.gen++
	gen := c.gen
	c.bookingID = bookingID
	c.view = view
	c.loadErr = nil
	c.mu.Unlock()

	if c.user.ID == "" && c.profiles != nil {
		user, err := c.profiles.Get(ctx)
		if err != nil {
			log.Warn("Could not resolve current user, flags will be partial", "error", err)
		} else {
			c.mu.Lock()
			c.user = user
			c.mu.Unlock()
		}
	}

	agg, err := c.api.FetchBooking(ctx, bookingID, view)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// The session was unloaded or pointed elsewhere while we were
		// fetching; discard this result.
		return nil
	}
	if err != nil {
		c.state = StateError
		c.loadErr = err
		c.agg = nil
		c.metrics.IncSessionLoadFailures()
		return fmt.Errorf("loading booking %s: %w", bookingID, err)
	}

	c.state = StateLoaded
	c.agg = agg
	c.metrics.IncSessionLoads()
	log.Info("Booking session loaded", "bookingID", bookingID, "view", view)
	return nil
}

// Reload refetches the current aggregate. Unlike Load it leaves a loaded
// session intact on failure; the caller keeps the last good aggregate.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoaded {
		c.mu.Unlock()
		return nil
	}
	gen := c.gen
	bookingID := c.bookingID
	view := c.view
	c.mu.Unlock()

	agg, err := c.api.FetchBooking(ctx, bookingID, view)
	if err != nil {
		c.metrics.IncSessionLoadFailures()
		return fmt.Errorf("reloading booking %s: %w", bookingID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != StateLoaded {
		// The session was unloaded or re-loaded while we were fetching;
		// a stale result must not overwrite the newer aggregate.
		return nil
	}
	c.agg = agg
	c.metrics.IncSessionLoads()
	return nil
}

// Unload drops the aggregate and returns to the unloaded state. In-flight
// callbacks that settle afterwards are discarded by SafeUpdate.
func (c *Controller) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateUnloaded
	c.gen++
	c.agg = nil
	c.loadErr = nil
	c.bookingID = ""
}

// SafeUpdate applies a pure transform to the aggregate. It is a no-op
// unless the session is loaded.
func (c *Controller) SafeUpdate(fn func(*booking.Booking) *booking.Booking) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoaded || c.agg == nil {
		return
	}
	if next := fn(c.agg); next != nil {
		c.agg = next
	}
}

// Apply runs an action effect through the single safe-update call path:
// either the known in-place patch, or a full reload.
func (c *Controller) Apply(ctx context.Context, eff actions.Effect) error {
	if eff.Reload {
		return c.Reload(ctx)
	}
	if eff.Patch != nil {
		c.SafeUpdate(func(b *booking.Booking) *booking.Booking {
			eff.Patch(b)
			return b
		})
	}
	return nil
}

// State reports the session lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the load error for a session in the error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Aggregate returns a deep copy of the loaded aggregate, or nil outside the
// loaded state. Handing out a copy keeps readers (precondition checks,
// response rendering) isolated from patches applied concurrently under the
// controller lock.
func (c *Controller) Aggregate() *booking.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoaded {
		return nil
	}
	return c.agg.Clone()
}

// CurrentUser returns the identity snapshot the session resolved for the
// authenticated user.
func (c *Controller) CurrentUser() booking.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Flags computes the role-aware derived booleans for the current user at
// the given instant. Outside the loaded state every flag is false.
func (c *Controller) Flags(now time.Time) Flags {
	c.mu.Lock()
	defer c.mu.Unlock()

	var f Flags
	if c.state != StateLoaded || c.agg == nil || c.agg.Match == nil {
		return f
	}

	m := c.agg.Match
	f.IsCreator = booking.IsCreator(m, c.user)
	if p := booking.FindPlayer(m, c.user); p != nil {
		player := *p
		f.CurrentPlayer = &player
		f.IsInMatch = true
		f.IsPendingInvite = p.Status == booking.PlayerPending
		f.IsConfirmed = p.Status == booking.PlayerConfirmed
		f.IsDeclined = p.Status == booking.PlayerDeclined
	}
	return f
}
