package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/models"
	"github.com/mcdev12/matchcontrol/go/internal/teams"
)

type addTeamRequest struct {
	ID     flexString    `json:"id"`
	Name   string        `json:"name"`
	Leader string        `json:"leader"`
	Logo   string        `json:"logo"`
	Points models.Points `json:"points"`
}

// teamResult is a search hit; search results keep their rank order so ids travel inline.
type teamResult struct {
	ID string `json:"id"`
	models.Team
}

// handleListTeams returns every team keyed by id, or ranked matches when q is given.
func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if q := r.URL.Query().Get("q"); q != "" {
		found, err := h.teams.SearchTeams(ctx, q)
		if err != nil {
			log.Error().Err(err).Str("query", q).Msg("failed to search teams")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		results := make([]teamResult, len(found))
		for i, t := range found {
			results[i] = teamResult{ID: t.ID, Team: t}
		}
		writeJSON(w, http.StatusOK, results)
		return
	}

	all, err := h.teams.ListTeams(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list teams")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	byID := make(map[string]models.Team, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	writeJSON(w, http.StatusOK, byID)
}

func (h *Handler) handleAddTeam(w http.ResponseWriter, r *http.Request) {
	var req addTeamRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "Invalid team data"})
		return
	}

	_, err := h.teams.AddTeam(r.Context(), teams.AddTeamRequest{
		ID:     req.ID.Value,
		Name:   req.Name,
		Leader: req.Leader,
		Logo:   req.Logo,
		Points: req.Points,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, message{Message: "Team added successfully"})
	case errors.Is(err, teams.ErrInvalidTeam):
		writeJSON(w, http.StatusBadRequest, message{Message: "Invalid team data"})
	default:
		log.Error().Err(err).Str("team_id", req.ID.Value).Msg("failed to add team")
		writeJSON(w, http.StatusInternalServerError, message{Message: "Failed to add team"})
	}
}

func (h *Handler) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.teams.DeleteTeam(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, message{Message: "Team deleted successfully"})
	case errors.Is(err, teams.ErrInvalidTeam):
		writeJSON(w, http.StatusBadRequest, message{Message: "Invalid team ID"})
	default:
		log.Error().Err(err).Str("team_id", id).Msg("failed to delete team")
		writeJSON(w, http.StatusInternalServerError, message{Message: "Failed to delete team"})
	}
}
