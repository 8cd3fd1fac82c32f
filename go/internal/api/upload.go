package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

const maxLogoSize = 10 << 20

func (h *Handler) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("logo upload not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize)
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("logo file is required: %w", err))
		return
	}
	defer file.Close()

	reply, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to upload logo")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(reply); err != nil {
		log.Error().Err(err).Msg("failed to write upload response")
	}
}
