package courtapi

import (
	"context"
	"sync"

	"github.com/courtsidehq/courtside/internal/booking"
)

// MockClient is a hand-written mock of the Client interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	FetchBookingFunc  func(bookingID string, view View) (*booking.Booking, error)
	JoinMatchFunc     func(matchID string, team booking.Team) error
	LeaveMatchFunc    func(matchID string) error
	RespondInviteFunc func(matchID string, accept bool, team booking.Team) error
	InvitePlayerFunc  func(matchID, username string, team booking.Team) (booking.Player, error)
	RemovePlayerFunc  func(matchID, userID string) error
	AssignTeamFunc    func(matchID, userID string, team booking.Team) error
	SubmitScoreFunc   func(ctx context.Context, matchID string, winner booking.Team, sets []booking.SetScore) error
	CancelBookingFunc func(bookingID string) error
	FetchProfileFunc  func() (booking.User, error)

	FetchBookingCalls []struct {
		BookingID string
		View      View
	}
	JoinMatchCalls []struct {
		MatchID string
		Team    booking.Team
	}
	LeaveMatchCalls    []string
	RespondInviteCalls []struct {
		MatchID string
		Accept  bool
		Team    booking.Team
	}
	InvitePlayerCalls []struct {
		MatchID  string
		Username string
		Team     booking.Team
	}
	RemovePlayerCalls []struct {
		MatchID string
		UserID  string
	}
	AssignTeamCalls []struct {
		MatchID string
		UserID  string
		Team    booking.Team
	}
	SubmitScoreCalls []struct {
		MatchID string
		Winner  booking.Team
		Sets    []booking.SetScore
	}
	CancelBookingCalls []string
	FetchProfileCalls  int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) FetchBooking(_ context.Context, bookingID string, view View) (*booking.Booking, error) {
	m.mu.Lock()
	m.FetchBookingCalls = append(m.FetchBookingCalls, struct {
		BookingID string
		View      View
	}{bookingID, view})
	fn := m.FetchBookingFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(bookingID, view)
	}
	return &booking.Booking{ID: bookingID}, nil
}

func (m *MockClient) JoinMatch(_ context.Context, matchID string, team booking.Team) error {
	m.mu.Lock()
	m.JoinMatchCalls = append(m.JoinMatchCalls, struct {
		MatchID string
		Team    booking.Team
	}{matchID, team})
	fn := m.JoinMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID, team)
	}
	return nil
}

func (m *MockClient) LeaveMatch(_ context.Context, matchID string) error {
	m.mu.Lock()
	m.LeaveMatchCalls = append(m.LeaveMatchCalls, matchID)
	fn := m.LeaveMatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID)
	}
	return nil
}

func (m *MockClient) RespondInvite(_ context.Context, matchID string, accept bool, team booking.Team) error {
	m.mu.Lock()
	m.RespondInviteCalls = append(m.RespondInviteCalls, struct {
		MatchID string
		Accept  bool
		Team    booking.Team
	}{matchID, accept, team})
	fn := m.RespondInviteFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID, accept, team)
	}
	return nil
}

func (m *MockClient) InvitePlayer(_ context.Context, matchID, username string, team booking.Team) (booking.Player, error) {
	m.mu.Lock()
	m.InvitePlayerCalls = append(m.InvitePlayerCalls, struct {
		MatchID  string
		Username string
		Team     booking.Team
	}{matchID, username, team})
	fn := m.InvitePlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID, username, team)
	}
	return booking.Player{User: booking.User{Username: username}, Status: booking.PlayerPending, Team: team}, nil
}

func (m *MockClient) RemovePlayer(_ context.Context, matchID, userID string) error {
	m.mu.Lock()
	m.RemovePlayerCalls = append(m.RemovePlayerCalls, struct {
		MatchID string
		UserID  string
	}{matchID, userID})
	fn := m.RemovePlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID, userID)
	}
	return nil
}

func (m *MockClient) AssignTeam(_ context.Context, matchID, userID string, team booking.Team) error {
	m.mu.Lock()
	m.AssignTeamCalls = append(m.AssignTeamCalls, struct {
		MatchID string
		UserID  string
		Team    booking.Team
	}{matchID, userID, team})
	fn := m.AssignTeamFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID, userID, team)
	}
	return nil
}

func (m *MockClient) SubmitScore(ctx context.Context, matchID string, winner booking.Team, sets []booking.SetScore) error {
	m.mu.Lock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, struct {
		MatchID string
		Winner  booking.Team
		Sets    []booking.SetScore
	}{matchID, winner, sets})
	fn := m.SubmitScoreFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, matchID, winner, sets)
	}
	return nil
}

func (m *MockClient) CancelBooking(_ context.Context, bookingID string) error {
	m.mu.Lock()
	m.CancelBookingCalls = append(m.CancelBookingCalls, bookingID)
	fn := m.CancelBookingFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(bookingID)
	}
	return nil
}

func (m *MockClient) FetchProfile(_ context.Context) (booking.User, error) {
	m.mu.Lock()
	m.FetchProfileCalls++
	fn := m.FetchProfileFunc
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return booking.User{}, nil
}
