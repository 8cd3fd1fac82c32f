package match

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Countdown is a whole-second countdown driven by the scheduler.
//
// All methods must be called on the scheduler loop.
type Countdown struct {
	name      string
	axis      Axis
	sched     *Scheduler
	period    time.Duration
	observer  Observer
	target    int
	remaining int

	// pit-open signalling, main countdown only
	pitWatch  bool
	threshold int
	publisher Publisher
}

func newCountdown(name string, axis Axis, sched *Scheduler, period time.Duration, observer Observer) *Countdown {
	return &Countdown{
		name:     name,
		axis:     axis,
		sched:    sched,
		period:   period,
		observer: observer,
	}
}

// watchPitOpen makes the countdown publish the pit-open flag against threshold.
func (c *Countdown) watchPitOpen(threshold int, publisher Publisher) {
	c.pitWatch = true
	c.threshold = threshold
	c.publisher = publisher
}

// Configure sets target and remaining to seconds without touching a running ticker.
func (c *Countdown) Configure(seconds int) {
	c.target = seconds
	c.remaining = seconds
	c.publishPitOpen(false)

	log.Info().
		Str("timer", c.name).
		Int("target", seconds).
		Msg("countdown configured")
}

// Start begins ticking. A running ticker is replaced, never duplicated.
func (c *Countdown) Start() {
	if c.pitWatch && c.threshold < c.remaining {
		c.publishPitOpen(false)
	}
	c.sched.Every(c.axis, c.period, c.tick)

	log.Info().
		Str("timer", c.name).
		Int("remaining", c.remaining).
		Msg("countdown started")
}

// Stop cancels the ticker. Remaining is unchanged.
func (c *Countdown) Stop() {
	if c.sched.Cancel(c.axis) {
		log.Info().
			Str("timer", c.name).
			Int("remaining", c.remaining).
			Msg("countdown stopped")
	}
}

// Reset stops the countdown and restores remaining to the target.
func (c *Countdown) Reset() {
	c.sched.Cancel(c.axis)
	c.remaining = c.target
	c.publishPitOpen(false)

	log.Info().
		Str("timer", c.name).
		Int("remaining", c.remaining).
		Msg("countdown reset")
}

// SetPitOpenThreshold changes the pit-open threshold. It takes effect on the next tick.
func (c *Countdown) SetPitOpenThreshold(seconds int) {
	c.threshold = seconds
}

// PitOpenThreshold returns the current pit-open threshold.
func (c *Countdown) PitOpenThreshold() int {
	return c.threshold
}

func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) Target() int { return c.target }

// Running reports whether a ticker is active.
func (c *Countdown) Running() bool {
	return c.sched.Pending(c.axis)
}

func (c *Countdown) tick() {
	if c.remaining == 0 {
		c.sched.Cancel(c.axis)
		log.Info().Str("timer", c.name).Msg("countdown finished")
		return
	}

	c.remaining--
	c.observer.Tick(c.name, c.remaining)

	log.Debug().
		Str("timer", c.name).
		Int("remaining", c.remaining).
		Msg("tick")

	if c.pitWatch && c.remaining <= c.threshold {
		c.publishPitOpen(true)
	}
}

func (c *Countdown) publishPitOpen(open bool) {
	if !c.pitWatch {
		return
	}
	c.publisher.Publish(StateChange{
		Field: FieldPitOpen,
		Value: open,
		At:    c.sched.Clock().Now(),
	})
}
