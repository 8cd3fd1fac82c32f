package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/matchcontrol/go/internal/api"
	"github.com/mcdev12/matchcontrol/go/internal/gateway"
	"github.com/mcdev12/matchcontrol/go/internal/metrics"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	registerControlRoutes(mux, services)
	registerStreamRoutes(mux, services)

	mux.Handle("GET /metrics", metrics.NewMetricsHandler())
	setupHealthCheck(mux)

	handler := c.Handler(mux)

	// Streams stay open indefinitely, so only the header read is bounded.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown waits for active handlers; closing the hub ends the SSE streams.
	server.RegisterOnShutdown(services.Hub.Close)
	return server
}

func registerControlRoutes(mux *http.ServeMux, services *Services) {
	deps := api.Deps{
		Session:  services.Session,
		Teams:    services.Teams,
		Games:    services.Games,
		State:    services.Store,
		Observer: services.Metrics,
	}
	if services.Uploader != nil {
		deps.Uploader = services.Uploader
	}
	api.NewHandler(deps).RegisterRoutes(mux)
}

func registerStreamRoutes(mux *http.ServeMux, services *Services) {
	gateway.NewWebSocketHandler(services.Hub, gateway.DefaultConnectionConfig()).RegisterRoutes(mux)
	gateway.NewSSEHandler(services.Hub).RegisterRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
