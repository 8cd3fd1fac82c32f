package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/match"
)

type setMainRequest struct {
	MainTime flexString `json:"mainTime"`
}

type setPitRequest struct {
	PitTime flexString `json:"pitTime"`
}

type setPitOpenRequest struct {
	PitOpenTime flexString `json:"pitOpenTime"`
}

type pitStatusResponse struct {
	PitOpen json.RawMessage `json:"pitopen"`
}

func (h *Handler) handleSetMain(w http.ResponseWriter, r *http.Request) {
	var req setMainRequest
	h.setSeconds(w, r, &req, func() flexString { return req.MainTime }, "mainTime", h.session.SetMainTarget)
}

func (h *Handler) handleSetPit(w http.ResponseWriter, r *http.Request) {
	var req setPitRequest
	h.setSeconds(w, r, &req, func() flexString { return req.PitTime }, "pitTime", h.session.SetPitTarget)
}

func (h *Handler) handleSetPitOpen(w http.ResponseWriter, r *http.Request) {
	var req setPitOpenRequest
	h.setSeconds(w, r, &req, func() flexString { return req.PitOpenTime }, "pitOpenTime", h.session.SetPitOpenThreshold)
}

// setSeconds decodes body into req, reads one seconds field from it and applies it.
func (h *Handler) setSeconds(w http.ResponseWriter, r *http.Request, req any, field func() flexString, name string, apply func(context.Context, int) error) {
	if err := decodeBody(r, req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	value := field()
	if !value.Set {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s is required", name))
		return
	}
	seconds, err := value.Int()
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", name, err))
		return
	}

	if err := apply(r.Context(), seconds); err != nil {
		if errors.Is(err, match.ErrInvalidDuration) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sessionFailed(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) timerAction(action func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context()); err != nil {
			sessionFailed(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) handleTimerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.session.TimerStatus(r.Context())
	if err != nil {
		sessionFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handlePitStatus reports the mirrored pit-open flag, or null when it was never written.
func (h *Handler) handlePitStatus(w http.ResponseWriter, r *http.Request) {
	raw, err := h.state.Get(r.Context(), match.FieldPitOpen)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Error().Err(err).Msg("failed to read pit status")
		}
		raw = nil
	}
	writeJSON(w, http.StatusOK, pitStatusResponse{PitOpen: raw})
}
