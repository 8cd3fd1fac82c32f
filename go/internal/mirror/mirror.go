// Package mirror forwards match state changes to external sinks without blocking the
// scheduler loop.
package mirror

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/match"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
)

// Sink receives state changes one at a time, in publish order.
type Sink interface {
	Name() string
	Write(ctx context.Context, change match.StateChange) error
}

// Recorder is notified of sink activity.
type Recorder interface {
	ObserveMirrorWrite(sink, field string, err error)
	IncMirrorDropped(sink string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveMirrorWrite(string, string, error) {}
func (noopRecorder) IncMirrorDropped(string) {}

// Config tunes a Mirror.
type Config struct {
	QueueSize    int
	WriteTimeout time.Duration
	Recorder     Recorder
}

// Mirror queues changes and writes them to its sink from a single goroutine, so writes
// land in the order they were published. Failed writes are logged and skipped.
type Mirror struct {
	sink     Sink
	queue    chan match.StateChange
	timeout  time.Duration
	recorder Recorder
}

// New creates a mirror for sink. Call Run to start writing.
func New(sink Sink, cfg Config) *Mirror {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	return &Mirror{
		sink:     sink,
		queue:    make(chan match.StateChange, cfg.QueueSize),
		timeout:  cfg.WriteTimeout,
		recorder: cfg.Recorder,
	}
}

// Publish enqueues change. When the queue is full the change is dropped.
func (m *Mirror) Publish(change match.StateChange) {
	select {
	case m.queue <- change:
	default:
		m.recorder.IncMirrorDropped(m.sink.Name())
		log.Warn().
			Str("sink", m.sink.Name()).
			Str("field", change.Field).
			Msg("mirror queue full, dropping state change")
	}
}

// Run writes queued changes until ctx is cancelled, then flushes what is already queued.
func (m *Mirror) Run(ctx context.Context) error {
	log.Info().Str("sink", m.sink.Name()).Msg("mirror started")
	for {
		select {
		case change := <-m.queue:
			m.write(ctx, change)
		case <-ctx.Done():
			m.flush()
			log.Info().Str("sink", m.sink.Name()).Msg("mirror stopped")
			return nil
		}
	}
}

func (m *Mirror) flush() {
	for {
		select {
		case change := <-m.queue:
			m.write(context.Background(), change)
		default:
			return
		}
	}
}

func (m *Mirror) write(ctx context.Context, change match.StateChange) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	err := m.sink.Write(writeCtx, change)
	m.recorder.ObserveMirrorWrite(m.sink.Name(), change.Field, err)
	if err != nil {
		log.Error().
			Err(err).
			Str("sink", m.sink.Name()).
			Str("field", change.Field).
			Msg("failed to mirror state change")
	}
}

// Fanout publishes every change to each of its publishers.
type Fanout []match.Publisher

func (f Fanout) Publish(change match.StateChange) {
	for _, p := range f {
		p.Publish(change)
	}
}
