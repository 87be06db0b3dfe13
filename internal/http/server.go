package http

import (
	"net/http"

	"github.com/courtsidehq/courtside/internal/actions"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
	"github.com/courtsidehq/courtside/internal/profile"
	"github.com/courtsidehq/courtside/internal/session"
)

func NewServer(cfg config.Config, api courtapi.Client, actionsSvc *actions.Service, profiles *profile.Cache, metricsSvc metrics.Metrics, metricsHandler http.Handler) *Server {
	server := &Server{
		Api:            api,
		Actions:        actionsSvc,
		Profiles:       profiles,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		sessions:       make(map[string]*session.Controller),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/booking", Chain(s.BookingHandler(), paramsMiddleware))
	s.Router.Handle("/booking/cancel", Chain(s.CancelBookingHandler(), paramsMiddleware))
	s.Router.Handle("/match/join", Chain(s.JoinHandler(), paramsMiddleware))
	s.Router.Handle("/match/leave", Chain(s.LeaveHandler(), paramsMiddleware))
	s.Router.Handle("/match/respond", Chain(s.RespondHandler(), paramsMiddleware))
	s.Router.Handle("/match/invite", Chain(s.InviteHandler(), paramsMiddleware))
	s.Router.Handle("/match/remove-player", Chain(s.RemovePlayerHandler(), paramsMiddleware))
	s.Router.Handle("/match/assign-team", Chain(s.AssignTeamHandler(), paramsMiddleware))
	s.Router.Handle("/match/score", Chain(s.SubmitScoreHandler(), paramsMiddleware))
	s.Router.Handle("/session/close", Chain(s.CloseSessionHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
