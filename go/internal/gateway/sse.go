package gateway

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SSEHandler serves hub streams as server-sent events.
type SSEHandler struct {
	hub *Hub
}

func NewSSEHandler(hub *Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream returns a handler that writes one data event per broadcast frame until the
// client goes away.
func (h *SSEHandler) Stream(stream Stream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		sub := h.hub.Subscribe(stream, "sse")
		defer h.hub.Unsubscribe(sub)

		for {
			select {
			case <-r.Context().Done():
				return
			case frame, ok := <-sub.Send:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
					log.Debug().Err(err).Str("subscriber_id", sub.ID).Msg("failed to write event")
					return
				}
				flusher.Flush()
			}
		}
	}
}

// RegisterRoutes registers SSE routes with an HTTP mux
func (h *SSEHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /timer", h.Stream(StreamTimer))
	mux.HandleFunc("GET /gameId", h.Stream(StreamGameID))
}
