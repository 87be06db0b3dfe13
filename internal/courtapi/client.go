package courtapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/courtsidehq/courtside/internal/booking"
)

// HTTPClient talks to the court platform's booking API over HTTP and
// implements the Client interface.
type HTTPClient struct {
	httpClient *http.Client
	BaseURL    string
	token      string
}

// NewClient creates a new booking API client. The bearer token is supplied
// by the surrounding session/auth layer; this client never refreshes it.
func NewClient(baseURL, token string) Client {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		token:      token,
	}
}

var _ Client = (*HTTPClient)(nil)

// FetchBooking retrieves a booking aggregate by ID.
func (c *HTTPClient) FetchBooking(ctx context.Context, bookingID string, view View) (*booking.Booking, error) {
	url := fmt.Sprintf("%s/v1/bookings/%s?view=%s", c.BaseURL, bookingID, view)

	var resp bookingResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	b, err := mapBooking(&resp)
	if err != nil {
		return nil, fmt.Errorf("failed to map booking %s: %w", bookingID, err)
	}
	log.Debug("Fetched booking", "bookingID", bookingID, "view", view)
	return b, nil
}

func (c *HTTPClient) JoinMatch(ctx context.Context, matchID string, team booking.Team) error {
	url := fmt.Sprintf("%s/v1/matches/%s/join", c.BaseURL, matchID)
	return c.do(ctx, http.MethodPost, url, joinRequest{Team: string(team)}, nil)
}

func (c *HTTPClient) LeaveMatch(ctx context.Context, matchID string) error {
	url := fmt.Sprintf("%s/v1/matches/%s/leave", c.BaseURL, matchID)
	return c.do(ctx, http.MethodPost, url, nil, nil)
}

func (c *HTTPClient) RespondInvite(ctx context.Context, matchID string, accept bool, team booking.Team) error {
	url := fmt.Sprintf("%s/v1/matches/%s/respond", c.BaseURL, matchID)
	return c.do(ctx, http.MethodPost, url, respondRequest{Accept: accept, Team: string(team)}, nil)
}

func (c *HTTPClient) InvitePlayer(ctx context.Context, matchID, username string, team booking.Team) (booking.Player, error) {
	url := fmt.Sprintf("%s/v1/matches/%s/invites", c.BaseURL, matchID)

	var resp playerResponse
	if err := c.do(ctx, http.MethodPost, url, inviteRequest{Username: username, Team: string(team)}, &resp); err != nil {
		return booking.Player{}, err
	}
	return mapPlayer(resp), nil
}

func (c *HTTPClient) RemovePlayer(ctx context.Context, matchID, userID string) error {
	url := fmt.Sprintf("%s/v1/matches/%s/players/%s", c.BaseURL, matchID, userID)
	return c.do(ctx, http.MethodDelete, url, nil, nil)
}

func (c *HTTPClient) AssignTeam(ctx context.Context, matchID, userID string, team booking.Team) error {
	url := fmt.Sprintf("%s/v1/matches/%s/players/%s/team", c.BaseURL, matchID, userID)

	var payload assignTeamRequest
	if team != booking.TeamUnassigned {
		t := string(team)
		payload.Team = &t
	}
	return c.do(ctx, http.MethodPut, url, payload, nil)
}

func (c *HTTPClient) SubmitScore(ctx context.Context, matchID string, winner booking.Team, sets []booking.SetScore) error {
	url := fmt.Sprintf("%s/v1/matches/%s/score", c.BaseURL, matchID)

	payload := scoreRequest{Winner: string(winner)}
	for _, s := range sets {
		payload.Sets = append(payload.Sets, setResponse{TeamA: s.TeamA, TeamB: s.TeamB})
	}
	return c.do(ctx, http.MethodPost, url, payload, nil)
}

func (c *HTTPClient) CancelBooking(ctx context.Context, bookingID string) error {
	url := fmt.Sprintf("%s/v1/bookings/%s/cancel", c.BaseURL, bookingID)
	return c.do(ctx, http.MethodPost, url, nil, nil)
}

func (c *HTTPClient) FetchProfile(ctx context.Context) (booking.User, error) {
	url := fmt.Sprintf("%s/v1/users/me", c.BaseURL)

	var resp userResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return booking.User{}, err
	}
	return mapUser(resp), nil
}

// do executes one request/response exchange. Non-2xx responses are decoded
// into an *APIError; a body that is not the service's error shape falls back
// to a generic message.
func (c *HTTPClient) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	log.Debug("Requesting booking API", "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		log.Error("Received non-OK HTTP status from booking API", "status", resp.StatusCode, "body", string(data))
		apiErr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return apiErr
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func mapBooking(resp *bookingResponse) (*booking.Booking, error) {
	start, err := time.ParseInLocation(dateTimeLayout, resp.Date+" "+resp.StartTime, time.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time: %w", err)
	}
	end, err := time.ParseInLocation(dateTimeLayout, resp.Date+" "+resp.EndTime, time.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end time: %w", err)
	}

	b := &booking.Booking{
		ID:          resp.ID,
		Date:        resp.Date,
		Start:       start,
		End:         end,
		Price:       resp.Price,
		PaymentMode: mapPaymentMode(resp.PaymentMode),
		Status:      mapBookingStatus(resp.Status, resp.ID),
		Owner:       mapUser(resp.Owner),
		Court: booking.Court{
			Facility: resp.Court.Facility,
			Name:     resp.Court.Name,
			Sport:    resp.Court.Sport,
		},
	}

	if resp.Match != nil {
		m := &booking.Match{
			ID:         resp.Match.ID,
			MaxPlayers: resp.Match.MaxPlayers,
			IsPublic:   resp.Match.IsPublic,
			Status:     mapMatchStatus(resp.Match.Status, resp.Match.ID),
			Winner:     booking.Team(resp.Match.Winner),
			Creator:    mapUser(resp.Match.Creator),
		}
		if resp.Match.Score != nil {
			for _, s := range resp.Match.Score.Sets {
				m.Sets = append(m.Sets, booking.SetScore{TeamA: s.TeamA, TeamB: s.TeamB})
			}
		}
		for _, p := range resp.Match.Players {
			m.Players = append(m.Players, mapPlayer(p))
		}
		b.Match = m
	}
	return b, nil
}

func mapPlayer(resp playerResponse) booking.Player {
	p := booking.Player{
		User:   mapUser(resp.User),
		Status: mapPlayerStatus(resp.Status, resp.User.ID),
		Team:   booking.Team(resp.Team),
	}
	if resp.JoinedAt != "" {
		joined, err := time.Parse(time.RFC3339, resp.JoinedAt)
		if err != nil {
			log.Warn("Failed to parse player join timestamp", "userID", resp.User.ID, "joined_at", resp.JoinedAt)
		} else {
			p.JoinedAt = joined
		}
	}
	return p
}

func mapUser(resp userResponse) booking.User {
	return booking.User{
		ID:       resp.ID,
		Username: resp.Username,
		Email:    resp.Email,
		Name:     resp.Name,
	}
}

func mapBookingStatus(raw, bookingID string) booking.BookingStatus {
	switch raw {
	case string(booking.BookingConfirmed):
		return booking.BookingConfirmed
	case string(booking.BookingCancelled):
		return booking.BookingCancelled
	default:
		log.Warn("Unknown booking status received from booking API", "status", raw, "bookingID", bookingID)
		return booking.BookingStatus(raw)
	}
}

func mapMatchStatus(raw, matchID string) booking.MatchStatus {
	switch raw {
	case string(booking.MatchStatusOpen),
		string(booking.MatchStatusFull),
		string(booking.MatchStatusCompleted),
		string(booking.MatchStatusCancelled),
		string(booking.MatchStatusNotTeamCompleted),
		string(booking.MatchStatusNotCompleted):
		return booking.MatchStatus(raw)
	default:
		log.Warn("Unknown match status received from booking API", "status", raw, "matchID", matchID)
		return booking.MatchStatus(raw)
	}
}

func mapPlayerStatus(raw, userID string) booking.PlayerStatus {
	switch raw {
	case string(booking.PlayerPending),
		string(booking.PlayerConfirmed),
		string(booking.PlayerDeclined):
		return booking.PlayerStatus(raw)
	default:
		log.Warn("Unknown player status received from booking API", "status", raw, "userID", userID)
		return booking.PlayerStatus(raw)
	}
}

func mapPaymentMode(raw string) booking.PaymentMode {
	switch raw {
	case string(booking.PaymentSplit):
		return booking.PaymentSplit
	default:
		return booking.PaymentFull
	}
}
