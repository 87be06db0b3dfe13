package session

import (
	"sync"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
	"github.com/courtsidehq/courtside/internal/profile"
)

// State is the lifecycle of one booking session.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateLoaded   State = "loaded"
	StateError    State = "error"
)

// Flags are the role-aware views of the loaded aggregate, recomputed from
// the current aggregate and wall-clock time on every read.
type Flags struct {
	IsCreator       bool            `json:"isCreator"`
	CurrentPlayer   *booking.Player `json:"currentPlayer,omitempty"`
	IsPendingInvite bool            `json:"isPendingInvite"`
	IsConfirmed     bool            `json:"isConfirmed"`
	IsDeclined      bool            `json:"isDeclined"`
	IsInMatch       bool            `json:"isInMatch"`
}

// Controller owns one loaded booking aggregate. Mutations go through
// SafeUpdate, which refuses to touch anything unless the session is loaded,
// so action callbacks that settle after an Unload are discarded.
type Controller struct {
	api      courtapi.Client
	profiles *profile.Cache
	metrics  metrics.Metrics

	mu        sync.Mutex
	state     State
	gen       int
	bookingID string
	view      courtapi.View
	agg       *booking.Booking
	user      booking.User
	loadErr   error
}

// NewController creates a session controller in the unloaded state.
func NewController(api courtapi.Client, profiles *profile.Cache, m metrics.Metrics) *Controller {
	return &Controller{
		api:      api,
		profiles: profiles,
		metrics:  m,
		state:    StateUnloaded,
	}
}
