package courtapi

import "fmt"

// View selects which variant of the booking aggregate to fetch.
type View string

const (
	ViewPlayer View = "player"
	ViewOwner  View = "owner"
)

// Machine-readable rejection reasons the action layer branches on.
const (
	ReasonNotConfirmed = "not_confirmed"
)

// APIError is a structured rejection from the remote service. Message is
// human-readable and shown verbatim where available; Reason is an optional
// machine-readable code.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service rejected request (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("service rejected request: %s", e.Message)
}

// bookingResponse is the JSON shape of a booking aggregate on the wire.
type bookingResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`       // YYYY-MM-DD
	StartTime   string          `json:"start_time"` // HH:MM, local wall-clock
	EndTime     string          `json:"end_time"`   // HH:MM, same day
	Price       string          `json:"price"`
	PaymentMode string          `json:"payment_mode"`
	Status      string          `json:"status"`
	Owner       userResponse    `json:"owner"`
	Court       courtResponse   `json:"court"`
	Match       *matchResponse  `json:"match"`
}

type courtResponse struct {
	Facility string `json:"facility"`
	Name     string `json:"name"`
	Sport    string `json:"sport"`
}

type matchResponse struct {
	ID         string           `json:"id"`
	MaxPlayers int              `json:"max_players"`
	IsPublic   bool             `json:"is_public"`
	Status     string           `json:"status"`
	Winner     string           `json:"winner"`
	Score      *scoreResponse   `json:"score"`
	Creator    userResponse     `json:"creator"`
	Players    []playerResponse `json:"players"`
}

type scoreResponse struct {
	Sets []setResponse `json:"sets"`
}

type setResponse struct {
	TeamA int `json:"team_a"`
	TeamB int `json:"team_b"`
}

type playerResponse struct {
	User     userResponse `json:"user"`
	Status   string       `json:"status"`
	Team     string       `json:"team"`
	JoinedAt string       `json:"joined_at"` // RFC 3339
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Request payloads.

type joinRequest struct {
	Team string `json:"team,omitempty"`
}

type respondRequest struct {
	Accept bool   `json:"accept"`
	Team   string `json:"team,omitempty"`
}

type inviteRequest struct {
	Username string `json:"username"`
	Team     string `json:"team,omitempty"`
}

type assignTeamRequest struct {
	Team *string `json:"team"` // null clears the assignment
}

type scoreRequest struct {
	Winner string        `json:"winner"`
	Sets   []setResponse `json:"sets"`
}
