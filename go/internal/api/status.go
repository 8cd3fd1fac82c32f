package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/matchcontrol/go/internal/match"
)

type statusResponse struct {
	Message    string           `json:"message"`
	GameStatus match.GameStatus `json:"gameStatus"`
}

type gameStatusResponse struct {
	GameStatus      match.GameStatus   `json:"gameStatus"`
	AvailableStates []match.GameStatus `json:"availableStates"`
}

type drawStatusResponse struct {
	IsDraw bool `json:"isDraw"`
}

type drawAndStatusResponse struct {
	Message    string           `json:"message"`
	IsDraw     bool             `json:"isDraw"`
	GameStatus match.GameStatus `json:"gameStatus"`
}

type scheduleActivationRequest struct {
	Delay flexString `json:"delay"`
}

type transitionFunc func(context.Context) (match.StatusView, error)

func (h *Handler) statusAction(transition transitionFunc, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := transition(r.Context())
		if err != nil {
			sessionFailed(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Message: msg, GameStatus: view.GameStatus})
	}
}

func (h *Handler) drawAction(transition transitionFunc, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := transition(r.Context()); err != nil {
			sessionFailed(w, err)
			return
		}
		writeJSON(w, http.StatusOK, message{Message: msg})
	}
}

// handleScheduleActivation activates the match after an optional delay in seconds.
func (h *Handler) handleScheduleActivation(w http.ResponseWriter, r *http.Request) {
	var req scheduleActivationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var delay time.Duration
	if req.Delay.Set {
		seconds, err := req.Delay.Int()
		if err != nil || seconds < 0 {
			writeError(w, http.StatusBadRequest, errors.New("delay must be a non-negative whole number of seconds"))
			return
		}
		delay = time.Duration(seconds) * time.Second
	}

	view, err := h.session.ScheduleActivation(r.Context(), delay)
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Message: "Game status activation scheduled", GameStatus: view.GameStatus})
}

func (h *Handler) handleGameStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Status(r.Context())
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameStatusResponse{
		GameStatus:      view.GameStatus,
		AvailableStates: match.AvailableStatuses,
	})
}

func (h *Handler) handleDrawStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Status(r.Context())
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawStatusResponse{IsDraw: view.IsDraw})
}

func (h *Handler) handleDeactivateDrawAndStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.DeactivateDrawAndStatus(r.Context())
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawAndStatusResponse{
		Message:    "Draw and game status deactivated",
		IsDraw:     view.IsDraw,
		GameStatus: view.GameStatus,
	})
}
