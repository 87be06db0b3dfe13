package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtsidehq/courtside/internal/actions"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/session"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// BookingHandler serves the read view: the aggregate plus the derived
// status, badge and role flags, computed at response time.
func (s *Server) BookingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID := r.URL.Query().Get("id")
		if bookingID == "" {
			http.Error(w, "Missing 'id' query parameter", http.StatusBadRequest)
			return
		}
		view := courtapi.ViewPlayer
		if r.URL.Query().Get("view") == string(courtapi.ViewOwner) {
			view = courtapi.ViewOwner
		}

		ctrl, err := s.resolveSession(r, bookingID, view)
		if err != nil {
			writeActionError(w, err)
			return
		}
		s.writeView(w, ctrl)
	}
}

func (s *Server) JoinHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
		Team      string `json:"team"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		team, ok := parseTeam(w, req.Team)
		if !ok {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.Join(r.Context(), b, ctrl.CurrentUser(), team)
		})
	}
}

func (s *Server) LeaveHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.Leave(r.Context(), b, ctrl.CurrentUser())
		})
	}
}

func (s *Server) RespondHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
		Accept    bool   `json:"accept"`
		Team      string `json:"team"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		team, ok := parseTeam(w, req.Team)
		if !ok {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.Respond(r.Context(), b, ctrl.CurrentUser(), req.Accept, team)
		})
	}
}

func (s *Server) InviteHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
		Username  string `json:"username"`
		Team      string `json:"team"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		if req.Username == "" {
			http.Error(w, "Missing 'username'", http.StatusBadRequest)
			return
		}
		team, ok := parseTeam(w, req.Team)
		if !ok {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.Invite(r.Context(), b, req.Username, team)
		})
	}
}

func (s *Server) RemovePlayerHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
		UserID    string `json:"userId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		if req.UserID == "" {
			http.Error(w, "Missing 'userId'", http.StatusBadRequest)
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.RemovePlayer(r.Context(), b, ctrl.CurrentUser(), req.UserID)
		})
	}
}

func (s *Server) AssignTeamHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
		UserID    string `json:"userId"`
		Team      string `json:"team"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		if req.UserID == "" {
			http.Error(w, "Missing 'userId'", http.StatusBadRequest)
			return
		}
		team, ok := parseTeam(w, req.Team)
		if !ok {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.AssignTeam(r.Context(), b, ctrl.CurrentUser(), req.UserID, team)
		})
	}
}

func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	type setPayload struct {
		TeamA int `json:"teamA"`
		TeamB int `json:"teamB"`
	}
	type request struct {
		BookingID string       `json:"bookingId"`
		Winner    string       `json:"winner"`
		Sets      []setPayload `json:"sets"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		winner, ok := parseTeam(w, req.Winner)
		if !ok {
			return
		}
		sets := make([]booking.SetScore, 0, len(req.Sets))
		for _, set := range req.Sets {
			sets = append(sets, booking.SetScore{TeamA: set.TeamA, TeamB: set.TeamB})
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.SubmitScore(r.Context(), b, winner, sets)
		})
	}
}

func (s *Server) CancelBookingHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		s.runAction(w, r, req.BookingID, func(ctrl *session.Controller, b *booking.Booking) (actions.Effect, error) {
			return s.Actions.CancelBooking(r.Context(), b)
		})
	}
}

// CloseSessionHandler unloads a booking session. Action callbacks that
// settle afterwards are discarded by the controller.
func (s *Server) CloseSessionHandler() http.HandlerFunc {
	type request struct {
		BookingID string `json:"bookingId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !s.decode(w, r, &req) {
			return
		}
		s.mu.Lock()
		ctrl := s.sessions[req.BookingID]
		delete(s.sessions, req.BookingID)
		s.mu.Unlock()
		if ctrl != nil {
			ctrl.Unload()
		}
		log.Info("Booking session closed", "bookingID", req.BookingID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Session closed")
	}
}

// resolveSession returns the controller for a booking, loading it on first
// use. A session stuck in the error state is retried.
func (s *Server) resolveSession(r *http.Request, bookingID string, view courtapi.View) (*session.Controller, error) {
	s.mu.Lock()
	ctrl, ok := s.sessions[bookingID]
	if !ok {
		ctrl = session.NewController(s.Api, s.Profiles, s.Metrics)
		s.sessions[bookingID] = ctrl
	}
	s.mu.Unlock()

	if ctrl.State() != session.StateLoaded {
		if err := ctrl.Load(r.Context(), bookingID, view); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

// runAction is the shared action path: resolve the session, run the
// operation against the loaded aggregate, apply its effect, and return the
// refreshed view.
func (s *Server) runAction(w http.ResponseWriter, r *http.Request, bookingID string, fn func(*session.Controller, *booking.Booking) (actions.Effect, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if bookingID == "" {
		http.Error(w, "Missing 'bookingId'", http.StatusBadRequest)
		return
	}

	ctrl, err := s.resolveSession(r, bookingID, courtapi.ViewPlayer)
	if err != nil {
		writeActionError(w, err)
		return
	}
	agg := ctrl.Aggregate()
	if agg == nil {
		writeActionError(w, fmt.Errorf("booking %s is not loaded", bookingID))
		return
	}

	eff, err := fn(ctrl, agg)
	if err != nil {
		writeActionError(w, err)
		return
	}
	if err := ctrl.Apply(r.Context(), eff); err != nil {
		writeActionError(w, err)
		return
	}
	s.writeView(w, ctrl)
}

func (s *Server) writeView(w http.ResponseWriter, ctrl *session.Controller) {
	now := time.Now()
	agg := ctrl.Aggregate()
	if agg == nil {
		writeActionError(w, errors.New("session is not loaded"))
		return
	}

	view := bookingView{
		Booking:         agg,
		EffectiveStatus: booking.EffectiveStatus(agg, now),
		Flags:           ctrl.Flags(now),
	}
	if agg.Match != nil {
		view.Badge = booking.Compose(agg.Match).Badge()
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("Failed to decode request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func parseTeam(w http.ResponseWriter, raw string) (booking.Team, bool) {
	switch raw {
	case string(booking.TeamUnassigned):
		return booking.TeamUnassigned, true
	case string(booking.TeamA):
		return booking.TeamA, true
	case string(booking.TeamB):
		return booking.TeamB, true
	default:
		http.Error(w, fmt.Sprintf("Invalid team %q", raw), http.StatusBadRequest)
		return booking.TeamUnassigned, false
	}
}

// writeActionError maps an action failure to a status code: local
// precondition 422, concurrent duplicate 409, score timeout 504, a service
// rejection keeps its own status, anything else is a bad gateway.
func writeActionError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	var pe *actions.PreconditionError
	var apiErr *courtapi.APIError
	switch {
	case errors.As(err, &pe):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, actions.ErrInFlight):
		status = http.StatusConflict
	case errors.Is(err, actions.ErrScoreTimeout):
		status = http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		if apiErr.Status > 0 {
			status = apiErr.Status
		}
	}

	writeJSON(w, status, errorResponse{
		Message: actions.Message(err),
		Reason:  actions.Reason(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
