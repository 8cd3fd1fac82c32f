package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:       "watch [timer|gameId]",
	Short:     "Print the display stream as it arrives",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"timer", "gameId"},
	RunE: func(cmd *cobra.Command, args []string) error {
		stream := "timer"
		if len(args) == 1 {
			stream = args[0]
		}

		wsURL, err := streamURL(host, stream)
		if err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}
		defer conn.Close()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		go func() {
			<-interrupt
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		}()

		out := cmd.OutOrStdout()
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return nil
				}
				return fmt.Errorf("stream closed: %w", err)
			}
			fmt.Fprintln(out, formatFrame(frame))
		}
	},
}

// streamURL maps the control host onto the WebSocket endpoint for stream.
func streamURL(host, stream string) (string, error) {
	switch stream {
	case "timer", "gameId":
	default:
		return "", fmt.Errorf("unknown stream %q, want timer or gameId", stream)
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + stream
	return u.String(), nil
}

// formatFrame renders a snapshot as space separated key=value pairs in a stable order.
func formatFrame(frame []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(frame, &fields); err != nil {
		return string(frame)
	}

	order := []string{"mainTime", "pitTime", "gameStatus", "isDraw", "gameId", "gameName", "team1Id", "team2Id", "team3Id", "winnerId"}
	parts := make([]string, 0, len(fields))
	for _, key := range order {
		if v, ok := fields[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	return strings.Join(parts, " ")
}
