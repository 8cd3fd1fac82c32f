package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/match"
)

// SnapshotSource supplies the composed match state.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (match.Snapshot, error)
	GameIDSnapshot(ctx context.Context) (match.GameIDSnapshot, error)
}

// Broadcaster samples the match state at a fixed interval and pushes it to every stream
// that has subscribers.
type Broadcaster struct {
	source   SnapshotSource
	hub      *Hub
	clock    clockwork.Clock
	interval time.Duration
}

func NewBroadcaster(source SnapshotSource, hub *Hub, clock clockwork.Clock, interval time.Duration) *Broadcaster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Broadcaster{
		source:   source,
		hub:      hub,
		clock:    clock,
		interval: interval,
	}
}

// Run broadcasts until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) error {
	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", b.interval).Msg("snapshot broadcaster started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("snapshot broadcaster stopped")
			return nil
		case <-ticker.Chan():
			b.BroadcastOnce(ctx)
		}
	}
}

// BroadcastOnce samples and pushes one frame per stream with subscribers.
func (b *Broadcaster) BroadcastOnce(ctx context.Context) {
	if b.hub.Count(StreamTimer) > 0 {
		snap, err := b.source.Snapshot(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to sample snapshot")
		} else {
			b.push(StreamTimer, snap)
		}
	}

	if b.hub.Count(StreamGameID) > 0 {
		snap, err := b.source.GameIDSnapshot(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to sample game id")
		} else {
			b.push(StreamGameID, snap)
		}
	}
}

func (b *Broadcaster) push(stream Stream, v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("stream", string(stream)).Msg("failed to marshal snapshot")
		return
	}
	b.hub.Broadcast(stream, frame)
}
