package booking

import "time"

// BookingStatus is the persisted status of a court reservation.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// MatchStatus is a match status value. The remote service persists the raw
// value; EffectiveStatus derives the one shown to users.
type MatchStatus string

const (
	// MatchStatusNone is the sentinel for a booking with no match attached.
	// It is not one of the service's persisted statuses.
	MatchStatusNone             MatchStatus = ""
	MatchStatusOpen             MatchStatus = "open"
	MatchStatusFull             MatchStatus = "full"
	MatchStatusCompleted        MatchStatus = "completed"
	MatchStatusCancelled        MatchStatus = "cancelled"
	MatchStatusNotTeamCompleted MatchStatus = "not_team_completed"
	MatchStatusNotCompleted     MatchStatus = "not_completed"
	// MatchStatusInProgress is derived only; the service never persists it.
	MatchStatusInProgress MatchStatus = "in_progress"
)

// PlayerStatus is the invite-response state of a match membership.
type PlayerStatus string

const (
	PlayerPending   PlayerStatus = "pending"
	PlayerConfirmed PlayerStatus = "confirmed"
	PlayerDeclined  PlayerStatus = "declined"
)

// Team identifies one of the two sides of a match.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
	// TeamUnassigned is a confirmed player not yet placed on a side.
	TeamUnassigned Team = ""
)

// PaymentMode is how the court price is settled.
type PaymentMode string

const (
	PaymentFull  PaymentMode = "full"
	PaymentSplit PaymentMode = "split"
)

// User is a (possibly partial) user profile snapshot carried on bookings,
// matches and players. Any field may be empty; compare with SameUser.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Player is one membership record linking a user to a match.
type Player struct {
	User     User         `json:"user"`
	Status   PlayerStatus `json:"status"`
	Team     Team         `json:"team"`
	JoinedAt time.Time    `json:"joined_at"`
}

// SetScore is the result of a single set.
type SetScore struct {
	TeamA int `json:"team_a"`
	TeamB int `json:"team_b"`
}

// Match is the team-game instance tied to a booking.
type Match struct {
	ID         string      `json:"id"`
	MaxPlayers int         `json:"max_players"`
	IsPublic   bool        `json:"is_public"`
	Status     MatchStatus `json:"status"`
	Winner     Team        `json:"winner,omitempty"`
	Sets       []SetScore  `json:"sets,omitempty"`
	Creator    User        `json:"creator"`
	Players    []Player    `json:"players"`
}

// HasScore reports whether a result has been recorded.
func (m *Match) HasScore() bool {
	return len(m.Sets) > 0
}

// Court is a reference to the reserved court.
type Court struct {
	Facility string `json:"facility"`
	Name     string `json:"name"`
	Sport    string `json:"sport"`
}

// Booking is a reserved court-time slot, owning at most one match.
// Start and End are the combined date + wall-clock instants of the slot.
type Booking struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"` // YYYY-MM-DD, the calendar day of the slot
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Price       string        `json:"price"`
	PaymentMode PaymentMode   `json:"payment_mode"`
	Status      BookingStatus `json:"status"`
	Owner       User          `json:"owner"`
	Court       Court         `json:"court"`
	Match       *Match        `json:"match,omitempty"`
}

// Clone returns a deep copy of the aggregate. Readers holding a clone are
// isolated from later in-place patches to the original.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	out := *b
	if b.Match != nil {
		m := *b.Match
		m.Players = append([]Player(nil), b.Match.Players...)
		m.Sets = append([]SetScore(nil), b.Match.Sets...)
		out.Match = &m
	}
	return &out
}
