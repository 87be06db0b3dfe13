package courtapi

import (
	"context"

	"github.com/courtsidehq/courtside/internal/booking"
)

// Client defines the operations the engine needs from the remote
// match/booking service. Transport and authentication framing live behind
// this interface.
type Client interface {
	// FetchBooking retrieves a booking aggregate by ID. The owner view
	// returns the same shape plus owner-only fields.
	FetchBooking(ctx context.Context, bookingID string, view View) (*booking.Booking, error)

	JoinMatch(ctx context.Context, matchID string, team booking.Team) error
	LeaveMatch(ctx context.Context, matchID string) error
	RespondInvite(ctx context.Context, matchID string, accept bool, team booking.Team) error
	// InvitePlayer returns the membership record the service created, so the
	// caller can patch it into the aggregate without a reload.
	InvitePlayer(ctx context.Context, matchID, username string, team booking.Team) (booking.Player, error)
	RemovePlayer(ctx context.Context, matchID, userID string) error
	AssignTeam(ctx context.Context, matchID, userID string, team booking.Team) error
	SubmitScore(ctx context.Context, matchID string, winner booking.Team, sets []booking.SetScore) error
	CancelBooking(ctx context.Context, bookingID string) error

	// FetchProfile returns the authenticated user's profile. Used only to
	// backfill a missing identity field.
	FetchProfile(ctx context.Context) (booking.User, error)
}
