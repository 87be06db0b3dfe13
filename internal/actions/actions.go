package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
)

// Join adds the actor to the booking's match, optionally on a team.
func (s *Service) Join(ctx context.Context, b *booking.Booking, actor booking.User, team booking.Team) (Effect, error) {
	return s.run("join", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match to join")
		}
		if !b.RegistrationOpen(s.now()) {
			return Effect{}, precondition("registration for this match has closed")
		}
		if booking.FindPlayer(m, actor) != nil {
			return Effect{}, precondition("you are already part of this match")
		}

		if err := s.api.JoinMatch(ctx, m.ID, team); err != nil {
			return Effect{}, err
		}
		return reloadEffect(), nil
	})
}

// Leave removes the actor from the match. Only confirmed members can leave;
// pending invitees decline instead.
func (s *Service) Leave(ctx context.Context, b *booking.Booking, actor booking.User) (Effect, error) {
	return s.run("leave", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		p := booking.FindPlayer(m, actor)
		if p == nil || p.Status != booking.PlayerConfirmed {
			return Effect{}, precondition("you are not a confirmed member of this match")
		}

		if err := s.api.LeaveMatch(ctx, m.ID); err != nil {
			return Effect{}, err
		}
		return reloadEffect(), nil
	})
}

// Respond accepts or declines a pending invite. Responding to anything other
// than a pending invite is a local precondition violation.
func (s *Service) Respond(ctx context.Context, b *booking.Booking, actor booking.User, accept bool, team booking.Team) (Effect, error) {
	return s.run("respond", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		p := booking.FindPlayer(m, actor)
		if p == nil || p.Status != booking.PlayerPending {
			return Effect{}, precondition("you have no pending invite for this match")
		}
		if !b.RegistrationOpen(s.now()) {
			return Effect{}, precondition("registration for this match has closed")
		}

		if err := s.api.RespondInvite(ctx, m.ID, accept, team); err != nil {
			// The service reports an invite that was withdrawn or already
			// answered with a machine-readable reason; surface it as-is so
			// presentation can branch on it.
			if Reason(err) == courtapi.ReasonNotConfirmed {
				log.Warn("Invite no longer pending on the server", "matchID", m.ID)
			}
			return Effect{}, err
		}
		return reloadEffect(), nil
	})
}

// Invite adds a player to the match by username. The service decides the
// resulting status: owner-issued invites arrive confirmed, player-issued
// invites pending. The returned membership record is patched in place.
func (s *Service) Invite(ctx context.Context, b *booking.Booking, username string, team booking.Team) (Effect, error) {
	return s.run("invite", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		if !b.RegistrationOpen(s.now()) {
			return Effect{}, precondition("registration for this match has closed")
		}
		if b.IsOngoing(s.now()) {
			return Effect{}, precondition("the match is already in progress")
		}
		if booking.FindPlayer(m, booking.User{Username: username}) != nil {
			return Effect{}, precondition(fmt.Sprintf("%s is already part of this match", username))
		}

		player, err := s.api.InvitePlayer(ctx, m.ID, username, team)
		if err != nil {
			return Effect{}, err
		}
		return patchEffect(func(agg *booking.Booking) {
			if agg.Match != nil {
				agg.Match.Players = append(agg.Match.Players, player)
			}
		}), nil
	})
}

// RemovePlayer deletes a membership record. Only the match creator may do
// this; callers must confirm destructively before invoking.
func (s *Service) RemovePlayer(ctx context.Context, b *booking.Booking, actor booking.User, userID string) (Effect, error) {
	return s.run("remove_player", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		if !booking.IsCreator(m, actor) {
			return Effect{}, precondition("only the match creator can remove players")
		}

		if err := s.api.RemovePlayer(ctx, m.ID, userID); err != nil {
			return Effect{}, err
		}
		return patchEffect(func(agg *booking.Booking) {
			if agg.Match == nil {
				return
			}
			players := agg.Match.Players[:0]
			for _, p := range agg.Match.Players {
				if !booking.SameUser(p.User, booking.User{ID: userID}) {
					players = append(players, p)
				}
			}
			agg.Match.Players = players
		}), nil
	})
}

// AssignTeam places a player on a side, or clears the assignment with
// TeamUnassigned. Over-filling a side is refused locally so the team-size
// invariant can never be violated through this path.
func (s *Service) AssignTeam(ctx context.Context, b *booking.Booking, actor booking.User, userID string, team booking.Team) (Effect, error) {
	return s.run("assign_team", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		if !booking.IsCreator(m, actor) {
			return Effect{}, precondition("only the match creator can assign teams")
		}
		target := booking.FindPlayer(m, booking.User{ID: userID})
		if target == nil {
			return Effect{}, precondition("that player is not part of this match")
		}
		if team != booking.TeamUnassigned {
			comp := booking.Compose(m)
			members := len(comp.TeamA)
			if team == booking.TeamB {
				members = len(comp.TeamB)
			}
			if target.Team != team && target.Status == booking.PlayerConfirmed && members >= comp.MaxPerTeam {
				return Effect{}, precondition(fmt.Sprintf("team %s is already full", team))
			}
		}

		if err := s.api.AssignTeam(ctx, m.ID, userID, team); err != nil {
			return Effect{}, err
		}
		return patchEffect(func(agg *booking.Booking) {
			if p := booking.FindPlayer(agg.Match, booking.User{ID: userID}); p != nil {
				p.Team = team
			}
		}), nil
	})
}

// SubmitScore records the result of a played match. The call runs against a
// fixed wall-clock budget; exceeding it is reported as ErrScoreTimeout and
// no mutation is applied in either failure case.
func (s *Service) SubmitScore(ctx context.Context, b *booking.Booking, winner booking.Team, sets []booking.SetScore) (Effect, error) {
	return s.run("submit_score", b.ID, func() (Effect, error) {
		m := b.Match
		if m == nil {
			return Effect{}, precondition("this booking has no match")
		}
		if winner != booking.TeamA && winner != booking.TeamB {
			return Effect{}, precondition("a winning team must be chosen")
		}
		if len(sets) == 0 {
			return Effect{}, precondition("at least one set is required")
		}
		if !booking.Compose(m).CanEnterScore() {
			return Effect{}, precondition("both teams must be complete before entering a score")
		}
		if booking.EffectiveStatus(b, s.now()) == booking.MatchStatusCancelled {
			return Effect{}, precondition("this match was cancelled; no score can be entered")
		}

		tctx, cancel := context.WithTimeout(ctx, s.scoreTimeout)
		defer cancel()

		if err := s.api.SubmitScore(tctx, m.ID, winner, sets); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return Effect{}, ErrScoreTimeout
			}
			return Effect{}, err
		}
		return reloadEffect(), nil
	})
}

// CancelBooking cancels the court reservation. The match record is not
// touched; the derived-status rules conclude it.
func (s *Service) CancelBooking(ctx context.Context, b *booking.Booking) (Effect, error) {
	return s.run("cancel_booking", b.ID, func() (Effect, error) {
		if b.Status == booking.BookingCancelled {
			return Effect{}, precondition("this booking is already cancelled")
		}
		if !b.IsUpcoming(s.now()) {
			return Effect{}, precondition("only upcoming bookings can be cancelled")
		}

		if err := s.api.CancelBooking(ctx, b.ID); err != nil {
			return Effect{}, err
		}
		return reloadEffect(), nil
	})
}

// run wraps one action with the in-flight guard and instrumentation. It is
// the final catch boundary: callers receive either an effect or an error
// carrying a user-facing message, never a panic or an unclassified failure.
func (s *Service) run(action, bookingID string, fn func() (Effect, error)) (Effect, error) {
	key := action + ":" + bookingID
	if !s.begin(key) {
		return Effect{}, ErrInFlight
	}
	defer s.release(key)

	start := time.Now()
	eff, err := fn()
	s.metrics.ObserveActionDuration(action, time.Since(start).Seconds())
	s.metrics.IncAction(action, classify(err))

	if err != nil {
		log.Warn("Action did not complete", "action", action, "bookingID", bookingID, "error", err)
		return Effect{}, err
	}
	log.Info("Action completed", "action", action, "bookingID", bookingID, "reload", eff.Reload)
	return eff, nil
}

func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[key] {
		return false
	}
	s.inflight[key] = true
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

func classify(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrScoreTimeout):
		return metrics.OutcomeTimeout
	case isPrecondition(err):
		return metrics.OutcomePrecondition
	case isRejection(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func isPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

func isRejection(err error) bool {
	var apiErr *courtapi.APIError
	return errors.As(err, &apiErr)
}

// Reason extracts the service's machine-readable rejection reason, if any.
func Reason(err error) string {
	var apiErr *courtapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}
	return ""
}

// Message returns the text to show the user for a failed action: the
// service's message verbatim where available, the precondition text for
// local rejections, and a generic fallback otherwise.
func Message(err error) string {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Message
	}
	var apiErr *courtapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrScoreTimeout) {
		return ErrScoreTimeout.Error()
	}
	if errors.Is(err, ErrInFlight) {
		return "that action is already in progress"
	}
	return "something went wrong, please try again"
}
