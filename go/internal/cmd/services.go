package main

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/games"
	"github.com/mcdev12/matchcontrol/go/internal/gateway"
	"github.com/mcdev12/matchcontrol/go/internal/kvstore"
	"github.com/mcdev12/matchcontrol/go/internal/match"
	"github.com/mcdev12/matchcontrol/go/internal/metrics"
	"github.com/mcdev12/matchcontrol/go/internal/mirror"
	"github.com/mcdev12/matchcontrol/go/internal/teams"
	"github.com/mcdev12/matchcontrol/go/internal/uploads"
)

type Services struct {
	Store       kvstore.Store
	Teams       *teams.App
	Games       *games.Repository
	Session     *match.Session
	Hub         *gateway.Hub
	Broadcaster *gateway.Broadcaster
	Mirrors     []*mirror.Mirror
	Uploader    *uploads.Client
	Metrics     *metrics.Service

	jetstream *mirror.JetStreamSink
}

func setupServices(ctx context.Context, cfg *Config, store kvstore.Store, metricsSvc *metrics.Service) *Services {
	// Store → repositories → apps → session
	teamsApp := teams.NewApp(teams.NewRepository(store))
	gamesRepo := games.NewRepository(store)

	mirrorCfg := mirror.Config{
		QueueSize:    cfg.Mirror.QueueSize,
		WriteTimeout: cfg.Mirror.WriteTimeout,
		Recorder:     metricsSvc,
	}
	mirrors := []*mirror.Mirror{mirror.New(mirror.NewStoreSink(store), mirrorCfg)}

	var js *mirror.JetStreamSink
	if cfg.Mirror.NATSURL != "" {
		jsCfg := mirror.DefaultJetStreamConfig()
		jsCfg.URL = cfg.Mirror.NATSURL
		jsCfg.StreamName = cfg.Mirror.StreamName
		jsCfg.SubjectPrefix = cfg.Mirror.SubjectPrefix

		sink, err := mirror.NewJetStreamSink(ctx, jsCfg)
		if err != nil {
			// Display state is still served locally
			log.Error().Err(err).Str("nats_url", jsCfg.URL).Msg("jetstream mirror disabled")
		} else {
			js = sink
			mirrors = append(mirrors, mirror.New(sink, mirrorCfg))
		}
	}

	fanout := make(mirror.Fanout, len(mirrors))
	for i, m := range mirrors {
		fanout[i] = m
	}

	clock := clockwork.NewRealClock()
	session := match.NewSession(teamsApp, gamesRepo, match.Options{
		Clock:     clock,
		Publisher: fanout,
		Observer:  metricsSvc,
		Settings:  cfg.Match,
	})

	hub := gateway.NewHub(cfg.Server.SubscriberBuffer, metricsSvc)

	var uploader *uploads.Client
	if cfg.Uploads.APIKey != "" {
		uploader = uploads.NewClient(uploads.Config{
			Endpoint:          cfg.Uploads.Endpoint,
			APIKey:            cfg.Uploads.APIKey,
			RequestsPerMinute: cfg.Uploads.RequestsPerMinute,
		})
	} else {
		log.Warn().Msg("FREEIMAGE_API_KEY not set, logo upload disabled")
	}

	return &Services{
		Store:       store,
		Teams:       teamsApp,
		Games:       gamesRepo,
		Session:     session,
		Hub:         hub,
		Broadcaster: gateway.NewBroadcaster(session, hub, clock, cfg.Server.BroadcastInterval),
		Mirrors:     mirrors,
		Uploader:    uploader,
		Metrics:     metricsSvc,
		jetstream:   js,
	}
}

// Run starts the session loop, mirrors and broadcaster and blocks until they all stop.
func (s *Services) Run(ctx context.Context) {
	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Str("component", name).Msg("component stopped with error")
			}
		}()
	}

	run("session", s.Session.Run)
	for _, m := range s.Mirrors {
		run("mirror", m.Run)
	}
	run("broadcaster", s.Broadcaster.Run)

	wg.Wait()
}

// Close releases external connections. Call after Run returns.
func (s *Services) Close() {
	if s.jetstream != nil {
		if err := s.jetstream.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close jetstream mirror")
		}
	}
	if err := s.Store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
}
