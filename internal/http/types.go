package http

import (
	"net/http"
	"sync"

	"github.com/courtsidehq/courtside/internal/actions"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
	"github.com/courtsidehq/courtside/internal/profile"
	"github.com/courtsidehq/courtside/internal/session"
)

type Server struct {
	Api            courtapi.Client
	Actions        *actions.Service
	Profiles       *profile.Cache
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux

	mu       sync.Mutex
	sessions map[string]*session.Controller
}

// bookingView is the read payload: the aggregate plus everything derived
// from it at response time.
type bookingView struct {
	Booking         *booking.Booking    `json:"booking"`
	EffectiveStatus booking.MatchStatus `json:"effectiveStatus"`
	Badge           string              `json:"badge,omitempty"`
	Flags           session.Flags       `json:"flags"`
}

type errorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}
