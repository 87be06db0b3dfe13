package actions

import (
	"errors"
	"sync"
	"time"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
)

// Effect is what a successful action asks the session controller to do:
// apply a known in-place patch, or reload the aggregate because the server
// may have changed fields the client cannot predict. Exactly one applies.
type Effect struct {
	Reload bool
	Patch  func(*booking.Booking)
}

func reloadEffect() Effect {
	return Effect{Reload: true}
}

func patchEffect(fn func(*booking.Booking)) Effect {
	return Effect{Patch: fn}
}

// PreconditionError is a local rejection: the action never reached the
// network and no state changed.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func precondition(msg string) error {
	return &PreconditionError{Message: msg}
}

var (
	// ErrInFlight means the same action is already running against the
	// same aggregate.
	ErrInFlight = errors.New("action already in flight")
	// ErrScoreTimeout means the score submission exceeded its wall-clock
	// budget. Distinct from a server rejection; no mutation was applied.
	ErrScoreTimeout = errors.New("submitting the score is taking too long")
)

// DefaultScoreTimeout is the wall-clock budget for a score submission.
const DefaultScoreTimeout = 10 * time.Second

// Service is the action layer: it validates preconditions against the
// derived views, calls the remote service, and returns the effect to apply.
type Service struct {
	api          courtapi.Client
	metrics      metrics.Metrics
	now          func() time.Time
	scoreTimeout time.Duration

	mu       sync.Mutex
	inflight map[string]bool
}

// New creates the action layer service.
func New(api courtapi.Client, m metrics.Metrics) *Service {
	return &Service{
		api:          api,
		metrics:      m,
		now:          time.Now,
		scoreTimeout: DefaultScoreTimeout,
		inflight:     make(map[string]bool),
	}
}
