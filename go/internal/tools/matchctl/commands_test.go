package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	body   map[string]any
}

func runCommand(t *testing.T, handler http.HandlerFunc, args ...string) (string, []captured, error) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []captured
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.RequestURI()}
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()
		handler(w, r)
	}))
	defer server.Close()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append([]string{"--host", server.URL}, args...))
	err := rootCmd.Execute()

	mu.Lock()
	defer mu.Unlock()
	return out.String(), calls, err
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestTimerSet(t *testing.T) {
	out, calls, err := runCommand(t, ok, "timer", "set", "main", "300")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/setMain", calls[0].path)
	assert.Equal(t, 300.0, calls[0].body["mainTime"])
	assert.Contains(t, out, "POST /setMain: ok")
}

func TestTimerResetUsesPut(t *testing.T) {
	_, calls, err := runCommand(t, ok, "timer", "reset", "pit")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/resetPit", calls[0].path)
}

func TestTimerRejectsUnknownTimer(t *testing.T) {
	_, calls, err := runCommand(t, ok, "timer", "start", "overtime")
	assert.Error(t, err)
	assert.Empty(t, calls)
}

func TestMatchFetchesNextID(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/nextGameId" {
			w.Write([]byte(`{"gameId":4}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}

	_, calls, err := runCommand(t, handler, "match", "--name", "Final", "7", "9", "11")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "/setGameDetails", calls[1].path)
	assert.Equal(t, map[string]any{"gameId": 4.0, "gameName": "Final", "team1": "7", "team2": "9", "team3": "11"}, calls[1].body)
}

func TestScoreReportsServerErrors(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid score"}`))
	}

	_, calls, err := runCommand(t, handler, "score", "x", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid score")
	assert.Equal(t, map[string]any{"team1score": "x", "team2score": "2"}, calls[0].body)
}

func TestStatusPrintsBody(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Game status set to SHOWN","gameStatus":"shown"}`))
	}

	out, calls, err := runCommand(t, handler, "status", "shown")
	require.NoError(t, err)
	assert.Equal(t, "/setGameStatusShown", calls[0].path)
	assert.Contains(t, out, `"gameStatus":"shown"`)
}

func TestStreamURL(t *testing.T) {
	u, err := streamURL("http://localhost:5000", "timer")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:5000/ws/timer", u)

	u, err = streamURL("https://panel.example.com/", "gameId")
	require.NoError(t, err)
	assert.Equal(t, "wss://panel.example.com/ws/gameId", u)

	_, err = streamURL("http://localhost:5000", "scores")
	assert.Error(t, err)
}

func TestFormatFrame(t *testing.T) {
	frame := []byte(`{"gameId":"3","mainTime":"59","isDraw":false,"gameStatus":"active"}`)
	assert.Equal(t, "mainTime=59 gameStatus=active isDraw=false gameId=3", formatFrame(frame))
	assert.Equal(t, "not json", formatFrame([]byte("not json")))
}
