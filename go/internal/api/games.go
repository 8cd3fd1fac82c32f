package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/match"
)

type setGameDetailsRequest struct {
	GameID   flexString `json:"gameId"`
	GameName string     `json:"gameName"`
	Team1    flexString `json:"team1"`
	Team2    flexString `json:"team2"`
	Team3    flexString `json:"team3"`
}

type saveGameRequest struct {
	Team1Score flexString `json:"team1score"`
	Team2Score flexString `json:"team2score"`
	Team3Score flexString `json:"team3score"`
}

func (h *Handler) handleSetGameDetails(w http.ResponseWriter, r *http.Request) {
	var req setGameDetailsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	gameID, err := req.GameID.Int()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("gameId: %w", err))
		return
	}

	// Positions are fixed: team1score always belongs to team1.
	if strings.TrimSpace(req.Team1.Value) == "" || strings.TrimSpace(req.Team2.Value) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: team1 and team2 are required", match.ErrInvalidMatchConfig))
		return
	}
	ids := []string{req.Team1.Value, req.Team2.Value}
	if strings.TrimSpace(req.Team3.Value) != "" {
		ids = append(ids, req.Team3.Value)
	}

	_, err = h.session.ConfigureMatch(r.Context(), match.MatchRequest{
		MatchID:        gameID,
		MatchName:      req.GameName,
		ParticipantIDs: ids,
	})
	if err != nil {
		if errors.Is(err, match.ErrInvalidMatchConfig) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sessionFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleGetGameDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.session.GameDetails(r.Context())
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// handleSaveGame decides the configured match from the submitted scores. Scores are
// positional: team1score, team2score and, for three-way matches, team3score.
func (h *Handler) handleSaveGame(w http.ResponseWriter, r *http.Request) {
	var req saveGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	scores := []string{req.Team1Score.Value, req.Team2Score.Value}
	if req.Team3Score.Value != "" {
		scores = append(scores, req.Team3Score.Value)
	}

	_, err := h.session.SubmitScores(r.Context(), scores)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, message{Message: "Saved Scores Successfully"})
	case errors.Is(err, match.ErrMatchNotConfigured):
		writeJSON(w, http.StatusOK, message{Message: "Game details not set!"})
	case errors.Is(err, match.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, err)
	default:
		sessionFailed(w, err)
	}
}

// handleNextGameID suggests the id for the next match: one past the stored game count,
// or an empty string when there are no games yet.
func (h *Handler) handleNextGameID(w http.ResponseWriter, r *http.Request) {
	count, err := h.games.CountGames(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to count games")
	}
	if err != nil || count == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"gameId": ""})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"gameId": count + 1})
}

func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGames(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list games")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}
