package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/courtapi"
	"github.com/courtsidehq/courtside/internal/metrics"
)

func newTestService(api *courtapi.MockClient, now time.Time) (*Service, *metrics.Mock) {
	m := metrics.NewMock()
	s := New(api, m)
	s.now = func() time.Time { return now }
	return s, m
}

func upcomingBooking(now time.Time) *booking.Booking {
	start := now.Add(2 * time.Hour)
	return &booking.Booking{
		ID:     "bk-1",
		Date:   start.Format("2006-01-02"),
		Start:  start,
		End:    start.Add(90 * time.Minute),
		Status: booking.BookingConfirmed,
		Match: &booking.Match{
			ID:         "m-1",
			MaxPlayers: 4,
			Status:     booking.MatchStatusOpen,
			Creator:    booking.User{ID: "creator", Username: "creator"},
		},
	}
}

func fullTeams(m *booking.Match) {
	m.Players = []booking.Player{
		{User: booking.User{ID: "p1", Username: "p1"}, Status: booking.PlayerConfirmed, Team: booking.TeamA},
		{User: booking.User{ID: "p2", Username: "p2"}, Status: booking.PlayerConfirmed, Team: booking.TeamA},
		{User: booking.User{ID: "p3", Username: "p3"}, Status: booking.PlayerConfirmed, Team: booking.TeamB},
		{User: booking.User{ID: "p4", Username: "p4"}, Status: booking.PlayerConfirmed, Team: booking.TeamB},
	}
}

func TestJoin(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("joins an open match and asks for a reload", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, m := newTestService(api, now)
		b := upcomingBooking(now)

		eff, err := s.Join(context.Background(), b, booking.User{ID: "p9"}, booking.TeamA)
		require.NoError(t, err)
		assert.True(t, eff.Reload)
		assert.Nil(t, eff.Patch)
		require.Len(t, api.JoinMatchCalls, 1)
		assert.Equal(t, "m-1", api.JoinMatchCalls[0].MatchID)
		assert.Equal(t, booking.TeamA, api.JoinMatchCalls[0].Team)
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomeSuccess, m.ActionCalls[0].Outcome)
	})

	t.Run("refuses after the registration cutoff without calling the service", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, m := newTestService(api, now)
		b := upcomingBooking(now)
		b.Start = now.Add(30 * time.Minute)
		b.End = b.Start.Add(90 * time.Minute)

		_, err := s.Join(context.Background(), b, booking.User{ID: "p9"}, booking.TeamUnassigned)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.JoinMatchCalls)
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomePrecondition, m.ActionCalls[0].Outcome)
	})

	t.Run("refuses when the actor is already a member", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p9"}, Status: booking.PlayerPending},
		}

		_, err := s.Join(context.Background(), b, booking.User{ID: "p9"}, booking.TeamUnassigned)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.JoinMatchCalls)
	})
}

func TestLeave(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("only confirmed members can leave", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerPending},
		}

		_, err := s.Leave(context.Background(), b, booking.User{ID: "p1"})
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.LeaveMatchCalls)
	})

	t.Run("leaves and reloads", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerConfirmed},
		}

		eff, err := s.Leave(context.Background(), b, booking.User{ID: "p1"})
		require.NoError(t, err)
		assert.True(t, eff.Reload)
		assert.Equal(t, []string{"m-1"}, api.LeaveMatchCalls)
	})
}

func TestRespond(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("rejects locally when the invite was already declined", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, m := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerDeclined},
		}

		_, err := s.Respond(context.Background(), b, booking.User{ID: "p1"}, true, booking.TeamA)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.RespondInviteCalls)
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomePrecondition, m.ActionCalls[0].Outcome)
	})

	t.Run("passes a server-side rejection through unchanged", func(t *testing.T) {
		api := courtapi.NewMockClient()
		api.RespondInviteFunc = func(string, bool, booking.Team) error {
			return &courtapi.APIError{Status: 409, Message: "invite was withdrawn", Reason: courtapi.ReasonNotConfirmed}
		}
		s, m := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerPending},
		}

		_, err := s.Respond(context.Background(), b, booking.User{ID: "p1"}, true, booking.TeamA)
		require.Error(t, err)
		assert.Equal(t, courtapi.ReasonNotConfirmed, Reason(err))
		assert.Equal(t, "invite was withdrawn", Message(err))
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomeRejected, m.ActionCalls[0].Outcome)
	})

	t.Run("accepts a pending invite", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerPending},
		}

		eff, err := s.Respond(context.Background(), b, booking.User{ID: "p1"}, true, booking.TeamB)
		require.NoError(t, err)
		assert.True(t, eff.Reload)
		require.Len(t, api.RespondInviteCalls, 1)
		assert.True(t, api.RespondInviteCalls[0].Accept)
		assert.Equal(t, booking.TeamB, api.RespondInviteCalls[0].Team)
	})
}

func TestInvite(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("patches the returned player into the aggregate", func(t *testing.T) {
		api := courtapi.NewMockClient()
		api.InvitePlayerFunc = func(matchID, username string, team booking.Team) (booking.Player, error) {
			return booking.Player{
				User:   booking.User{ID: "u-new", Username: username},
				Status: booking.PlayerPending,
				Team:   team,
			}, nil
		}
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)

		eff, err := s.Invite(context.Background(), b, "newbie", booking.TeamB)
		require.NoError(t, err)
		assert.False(t, eff.Reload)
		require.NotNil(t, eff.Patch)

		eff.Patch(b)
		require.Len(t, b.Match.Players, 1)
		assert.Equal(t, "newbie", b.Match.Players[0].User.Username)
		assert.Equal(t, booking.PlayerPending, b.Match.Players[0].Status)
		assert.Equal(t, booking.TeamB, b.Match.Players[0].Team)
	})

	t.Run("refuses after the deadline", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Start = now.Add(10 * time.Minute)
		b.End = b.Start.Add(90 * time.Minute)

		_, err := s.Invite(context.Background(), b, "newbie", booking.TeamUnassigned)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.InvitePlayerCalls)
	})

	t.Run("refuses a duplicate username", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "u1", Username: "newbie"}, Status: booking.PlayerConfirmed},
		}

		_, err := s.Invite(context.Background(), b, "newbie", booking.TeamUnassigned)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.InvitePlayerCalls)
	})
}

func TestRemovePlayer(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	creator := booking.User{ID: "creator", Username: "creator"}

	t.Run("creator removes a player via a patch", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		fullTeams(b.Match)

		eff, err := s.RemovePlayer(context.Background(), b, creator, "p2")
		require.NoError(t, err)
		require.NotNil(t, eff.Patch)

		eff.Patch(b)
		require.Len(t, b.Match.Players, 3)
		for _, p := range b.Match.Players {
			assert.NotEqual(t, "p2", p.User.ID)
		}
	})

	t.Run("non-creators are refused", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		fullTeams(b.Match)

		_, err := s.RemovePlayer(context.Background(), b, booking.User{ID: "p1"}, "p2")
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.RemovePlayerCalls)
	})
}

func TestAssignTeam(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	creator := booking.User{ID: "creator", Username: "creator"}

	t.Run("assigns and patches in place", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p1"}, Status: booking.PlayerConfirmed, Team: booking.TeamUnassigned},
		}

		eff, err := s.AssignTeam(context.Background(), b, creator, "p1", booking.TeamA)
		require.NoError(t, err)
		require.NotNil(t, eff.Patch)
		eff.Patch(b)
		assert.Equal(t, booking.TeamA, b.Match.Players[0].Team)
	})

	t.Run("refuses to over-fill a side", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		fullTeams(b.Match)
		b.Match.Players = append(b.Match.Players, booking.Player{
			User: booking.User{ID: "p5"}, Status: booking.PlayerConfirmed, Team: booking.TeamUnassigned,
		})
		b.Match.MaxPlayers = 4

		_, err := s.AssignTeam(context.Background(), b, creator, "p5", booking.TeamA)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.AssignTeamCalls)
	})

	t.Run("clearing an assignment is always allowed", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		fullTeams(b.Match)

		eff, err := s.AssignTeam(context.Background(), b, creator, "p1", booking.TeamUnassigned)
		require.NoError(t, err)
		eff.Patch(b)
		assert.Equal(t, booking.TeamUnassigned, b.Match.Players[0].Team)
	})
}

func TestSubmitScore(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	sets := []booking.SetScore{{TeamA: 6, TeamB: 3}, {TeamA: 6, TeamB: 4}}

	playedBooking := func() *booking.Booking {
		b := upcomingBooking(now)
		b.Start = now.Add(-3 * time.Hour)
		b.End = now.Add(-90 * time.Minute)
		fullTeams(b.Match)
		return b
	}

	t.Run("submits for a finished match with complete teams", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, m := newTestService(api, now)
		b := playedBooking()

		eff, err := s.SubmitScore(context.Background(), b, booking.TeamA, sets)
		require.NoError(t, err)
		assert.True(t, eff.Reload)
		require.Len(t, api.SubmitScoreCalls, 1)
		assert.Equal(t, booking.TeamA, api.SubmitScoreCalls[0].Winner)
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomeSuccess, m.ActionCalls[0].Outcome)
	})

	t.Run("rejects locally when teams are incomplete", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := playedBooking()
		b.Match.Players = b.Match.Players[:3]

		_, err := s.SubmitScore(context.Background(), b, booking.TeamA, sets)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.SubmitScoreCalls)
	})

	t.Run("rejects locally for a cancelled match", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := playedBooking()
		b.Match.Status = booking.MatchStatusCancelled

		_, err := s.SubmitScore(context.Background(), b, booking.TeamA, sets)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.SubmitScoreCalls)
	})

	t.Run("requires a winner and at least one set", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := playedBooking()

		_, err := s.SubmitScore(context.Background(), b, booking.TeamUnassigned, sets)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)

		_, err = s.SubmitScore(context.Background(), b, booking.TeamA, nil)
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.SubmitScoreCalls)
	})

	t.Run("a slow submission surfaces as a timeout", func(t *testing.T) {
		api := courtapi.NewMockClient()
		api.SubmitScoreFunc = func(ctx context.Context, _ string, _ booking.Team, _ []booking.SetScore) error {
			<-ctx.Done()
			return ctx.Err()
		}
		s, m := newTestService(api, now)
		s.scoreTimeout = 20 * time.Millisecond
		b := playedBooking()

		_, err := s.SubmitScore(context.Background(), b, booking.TeamB, sets)
		require.ErrorIs(t, err, ErrScoreTimeout)
		require.Len(t, m.ActionCalls, 1)
		assert.Equal(t, metrics.OutcomeTimeout, m.ActionCalls[0].Outcome)
	})
}

func TestCancelBooking(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("cancels an upcoming booking", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)

		eff, err := s.CancelBooking(context.Background(), b)
		require.NoError(t, err)
		assert.True(t, eff.Reload)
		assert.Equal(t, []string{"bk-1"}, api.CancelBookingCalls)
	})

	t.Run("refuses a booking that already started", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Start = now.Add(-10 * time.Minute)
		b.End = now.Add(80 * time.Minute)

		_, err := s.CancelBooking(context.Background(), b)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.CancelBookingCalls)
	})

	t.Run("refuses a booking that is already cancelled", func(t *testing.T) {
		api := courtapi.NewMockClient()
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Status = booking.BookingCancelled

		_, err := s.CancelBooking(context.Background(), b)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, api.CancelBookingCalls)
	})
}

func TestInFlightGuard(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("a second identical action is refused while the first runs", func(t *testing.T) {
		api := courtapi.NewMockClient()
		release := make(chan struct{})
		started := make(chan struct{})
		api.JoinMatchFunc = func(string, booking.Team) error {
			close(started)
			<-release
			return nil
		}
		s, m := newTestService(api, now)
		b := upcomingBooking(now)

		done := make(chan error, 1)
		go func() {
			_, err := s.Join(context.Background(), b, booking.User{ID: "p1"}, booking.TeamA)
			done <- err
		}()
		<-started

		_, err := s.Join(context.Background(), b, booking.User{ID: "p2"}, booking.TeamA)
		assert.ErrorIs(t, err, ErrInFlight)

		close(release)
		require.NoError(t, <-done)

		// The refused attempt never reaches the instrumentation.
		require.Len(t, m.ActionCalls, 1)
	})

	t.Run("different actions on the same booking do not block each other", func(t *testing.T) {
		api := courtapi.NewMockClient()
		release := make(chan struct{})
		started := make(chan struct{})
		api.JoinMatchFunc = func(string, booking.Team) error {
			close(started)
			<-release
			return nil
		}
		s, _ := newTestService(api, now)
		b := upcomingBooking(now)
		b.Match.Players = []booking.Player{
			{User: booking.User{ID: "p3"}, Status: booking.PlayerConfirmed},
		}

		done := make(chan error, 1)
		go func() {
			_, err := s.Join(context.Background(), b, booking.User{ID: "p1"}, booking.TeamA)
			done <- err
		}()
		<-started

		_, err := s.Leave(context.Background(), b, booking.User{ID: "p3"})
		assert.NoError(t, err)

		close(release)
		require.NoError(t, <-done)
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "nope", Message(precondition("nope")))
	assert.Equal(t, "court closed", Message(&courtapi.APIError{Status: 422, Message: "court closed"}))
	assert.Equal(t, ErrScoreTimeout.Error(), Message(ErrScoreTimeout))
	assert.Equal(t, "that action is already in progress", Message(ErrInFlight))
	assert.Equal(t, "something went wrong, please try again", Message(errors.New("boom")))
}
