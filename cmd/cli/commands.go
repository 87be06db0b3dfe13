package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	bookingID string
	team      string
	username  string
	userID    string
	ownerView bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)

	bookingCmd.Flags().BoolVar(&ownerView, "owner", false, "Request the owner view of the booking")
	rootCmd.AddCommand(bookingCmd)

	for _, cmd := range []*cobra.Command{joinCmd, leaveCmd, acceptCmd, declineCmd, inviteCmd, removePlayerCmd, assignTeamCmd, scoreCmd, cancelCmd, closeCmd} {
		cmd.Flags().StringVar(&bookingID, "booking", "", "The booking ID")
		_ = cmd.MarkFlagRequired("booking")
		rootCmd.AddCommand(cmd)
	}
	joinCmd.Flags().StringVar(&team, "team", "", "Team to join (A or B)")
	acceptCmd.Flags().StringVar(&team, "team", "", "Team to accept onto (A or B)")
	inviteCmd.Flags().StringVar(&username, "username", "", "Username to invite")
	inviteCmd.Flags().StringVar(&team, "team", "", "Team for the invitee (A or B)")
	_ = inviteCmd.MarkFlagRequired("username")
	removePlayerCmd.Flags().StringVar(&userID, "user", "", "User ID to remove")
	_ = removePlayerCmd.MarkFlagRequired("user")
	assignTeamCmd.Flags().StringVar(&userID, "user", "", "User ID to assign")
	assignTeamCmd.Flags().StringVar(&team, "team", "", "Team to assign (A, B, or empty to clear)")
	_ = assignTeamCmd.MarkFlagRequired("user")
	scoreCmd.Flags().StringVar(&team, "winner", "", "Winning team (A or B)")
	_ = scoreCmd.MarkFlagRequired("winner")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var bookingCmd = &cobra.Command{
	Use:   "booking <id>",
	Short: "Show a booking with its derived status and flags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{"id": {args[0]}}
		if ownerView {
			query.Set("view", "owner")
		}
		return performGetRequest("/booking?" + query.Encode())
	},
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join the match on a booking",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/join", map[string]any{"bookingId": bookingID, "team": team})
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leave the match on a booking",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/leave", map[string]any{"bookingId": bookingID})
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept a pending match invite",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/respond", map[string]any{"bookingId": bookingID, "accept": true, "team": team})
	},
}

var declineCmd = &cobra.Command{
	Use:   "decline",
	Short: "Decline a pending match invite",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/respond", map[string]any{"bookingId": bookingID, "accept": false})
	},
}

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite a player to the match by username",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/invite", map[string]any{"bookingId": bookingID, "username": username, "team": team})
	},
}

var removePlayerCmd = &cobra.Command{
	Use:   "remove-player",
	Short: "Remove a player from the match (creator only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/remove-player", map[string]any{"bookingId": bookingID, "userId": userID})
	},
}

var assignTeamCmd = &cobra.Command{
	Use:   "assign-team",
	Short: "Assign a player to a team, or clear the assignment (creator only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/match/assign-team", map[string]any{"bookingId": bookingID, "userId": userID, "team": team})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <set>...",
	Short: "Submit the match score, sets given as A-B pairs like 6-3 6-4",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets := make([]map[string]int, 0, len(args))
		for _, arg := range args {
			a, b, err := parseSet(arg)
			if err != nil {
				return err
			}
			sets = append(sets, map[string]int{"teamA": a, "teamB": b})
		}
		return performPostRequest("/match/score", map[string]any{"bookingId": bookingID, "winner": team, "sets": sets})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the booking (the match record is untouched)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/booking/cancel", map[string]any{"bookingId": bookingID})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the booking session on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/session/close", map[string]any{"bookingId": bookingID})
	},
}

func parseSet(raw string) (int, int, error) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid set %q, expected A-B like 6-3", raw)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid set %q: %w", raw, err)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid set %q: %w", raw, err)
	}
	return a, b, nil
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}

func performPostRequest(endpoint string, payload map[string]any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
