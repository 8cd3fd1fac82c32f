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

var timers = []string{"main", "pit"}

func init() {
	timerCmd.AddCommand(timerSetCmd, timerStartCmd, timerStopCmd, timerResetCmd)
	rootCmd.AddCommand(healthCmd, timerCmd, pitOpenCmd, matchCmd, scoreCmd, statusCmd, drawCmd, teamsCmd, watchCmd)

	matchCmd.Flags().Int("id", 0, "match id (defaults to the next free id)")
	matchCmd.Flags().String("name", "", "match name")
	teamsCmd.Flags().StringP("query", "q", "", "fuzzy search by name or leader")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return request(cmd.OutOrStdout(), http.MethodGet, "/health", nil)
	},
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control the main and pit countdowns",
}

var timerSetCmd = &cobra.Command{
	Use:       "set <main|pit> <seconds>",
	Short:     "Set a countdown target",
	Args:      cobra.ExactArgs(2),
	ValidArgs: timers,
	RunE: func(cmd *cobra.Command, args []string) error {
		timer, err := timerName(args[0])
		if err != nil {
			return err
		}
		seconds, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("seconds must be a whole number: %w", err)
		}
		body := map[string]int{timer + "Time": seconds}
		return request(cmd.OutOrStdout(), http.MethodPost, "/set"+title(timer), body)
	},
}

var timerStartCmd = timerAction("start", http.MethodPost, "Start a countdown")
var timerStopCmd = timerAction("stop", http.MethodPost, "Stop a countdown")
var timerResetCmd = timerAction("reset", http.MethodPut, "Reset a countdown to its target")

func timerAction(verb, method, short string) *cobra.Command {
	return &cobra.Command{
		Use:       verb + " <main|pit>",
		Short:     short,
		Args:      cobra.ExactArgs(1),
		ValidArgs: timers,
		RunE: func(cmd *cobra.Command, args []string) error {
			timer, err := timerName(args[0])
			if err != nil {
				return err
			}
			return request(cmd.OutOrStdout(), method, "/"+verb+title(timer), nil)
		},
	}
}

var pitOpenCmd = &cobra.Command{
	Use:   "pit-open <seconds>",
	Short: "Set the main countdown value at which the pit opens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("seconds must be a whole number: %w", err)
		}
		return request(cmd.OutOrStdout(), http.MethodPost, "/setPitOpen", map[string]int{"pitOpenTime": seconds})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match <team1> <team2> [team3]",
	Short: "Put a match on air",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt("id")
		name, _ := cmd.Flags().GetString("name")

		if id == 0 {
			next, err := nextGameID()
			if err != nil {
				return err
			}
			id = next
		}

		body := map[string]any{"gameId": id, "gameName": name}
		for i, team := range args {
			body["team"+strconv.Itoa(i+1)] = team
		}
		return request(cmd.OutOrStdout(), http.MethodPost, "/setGameDetails", body)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <team1score> <team2score> [team3score]",
	Short: "Submit scores for the match on air",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{}
		for i, score := range args {
			body["team"+strconv.Itoa(i+1)+"score"] = score
		}
		return request(cmd.OutOrStdout(), http.MethodPost, "/saveGame", body)
	},
}

var statusCmd = &cobra.Command{
	Use:       "status [active|shown|deactive]",
	Short:     "Show or change the game status",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"active", "shown", "deactive"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return request(cmd.OutOrStdout(), http.MethodGet, "/gameStatus", nil)
		}
		switch args[0] {
		case "active", "shown", "deactive":
			return request(cmd.OutOrStdout(), http.MethodPost, "/setGameStatus"+title(args[0]), nil)
		default:
			return fmt.Errorf("unknown status %q", args[0])
		}
	},
}

var drawCmd = &cobra.Command{
	Use:       "draw [on|off|clear]",
	Short:     "Show or change the draw flag",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off", "clear"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return request(cmd.OutOrStdout(), http.MethodGet, "/drawStatus", nil)
		}
		switch args[0] {
		case "on":
			return request(cmd.OutOrStdout(), http.MethodPost, "/activateDraw", nil)
		case "off":
			return request(cmd.OutOrStdout(), http.MethodPost, "/deactivateDraw", nil)
		case "clear":
			return request(cmd.OutOrStdout(), http.MethodPost, "/deactivateDrawAndGameStatus", nil)
		default:
			return fmt.Errorf("unknown draw action %q", args[0])
		}
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List or search teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/teams"
		if q, _ := cmd.Flags().GetString("query"); q != "" {
			path += "?q=" + url.QueryEscape(q)
		}
		return request(cmd.OutOrStdout(), http.MethodGet, path, nil)
	},
}

func timerName(arg string) (string, error) {
	switch arg {
	case "main", "pit":
		return arg, nil
	default:
		return "", fmt.Errorf("unknown timer %q, want main or pit", arg)
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nextGameID() (int, error) {
	resp, err := http.Get(host + "/nextGameId")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch next game id: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		GameID any `json:"gameId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode next game id: %w", err)
	}
	if n, ok := body.GameID.(float64); ok && n >= 1 {
		return int(n), nil
	}
	return 1, nil
}

func request(out io.Writer, method, endpoint string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, host+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if len(data) == 0 {
		fmt.Fprintf(out, "%s %s: ok\n", method, endpoint)
		return nil
	}
	fmt.Fprintln(out, strings.TrimSpace(string(data)))
	return nil
}
