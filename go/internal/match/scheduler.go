package match

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrSchedulerStopped is returned by Do once the scheduler loop has exited.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Axis names an independent scheduling slot. At most one task is pending per axis.
type Axis string

const (
	AxisMainTick Axis = "main-tick"
	AxisPitTick  Axis = "pit-tick"
	AxisStatus   Axis = "status"
	AxisDraw     Axis = "draw"
)

const taskBufferSize = 64

type slot struct {
	gen  uint64
	stop chan struct{}
	halt func()
}

// Scheduler executes every match mutation on a single goroutine.
//
// Timers and tickers never touch state themselves: their goroutines only forward fires
// into the loop, where a generation check drops anything that was replaced or cancelled
// in the meantime. After, Every, Cancel and Pending must only be called from the loop,
// i.e. from inside a task passed to Do or from a scheduled callback.
type Scheduler struct {
	clock clockwork.Clock
	tasks chan func()
	done  chan struct{}

	// loop-owned
	slots    map[Axis]*slot
	deferred []func()
	gen      uint64
}

// NewScheduler creates a scheduler driven by clock. A nil clock means the real clock.
func NewScheduler(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		clock: clock,
		tasks: make(chan func(), taskBufferSize),
		done:  make(chan struct{}),
		slots: make(map[Axis]*slot),
	}
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Run processes tasks until ctx is cancelled. It must be called exactly once.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Msg("scheduler started")
	defer func() {
		for axis := range s.slots {
			s.Cancel(axis)
		}
		close(s.done)
		log.Info().Msg("scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-s.tasks:
			s.exec(task)
			s.drainDeferred()
		}
	}
}

// Do runs fn on the loop and waits for it to return.
func (s *Scheduler) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case s.tasks <- task:
	case <-s.done:
		return ErrSchedulerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrSchedulerStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After runs fn on the loop once d has elapsed, replacing whatever is pending on axis.
// A non-positive d defers fn until the current task has finished.
func (s *Scheduler) After(axis Axis, d time.Duration, fn func()) {
	sl := s.replace(axis)
	run := s.guard(axis, sl.gen, true, fn)

	if d <= 0 {
		s.deferred = append(s.deferred, run)
		return
	}

	timer := s.clock.NewTimer(d)
	sl.halt = func() { stopAndDrainTimer(timer) }

	go func() {
		select {
		case <-timer.Chan():
			s.post(run, sl.stop)
		case <-sl.stop:
		}
	}()

	log.Debug().
		Str("axis", string(axis)).
		Dur("delay", d).
		Msg("scheduled one-shot task")
}

// Every runs fn on the loop at each period, replacing whatever is pending on axis.
func (s *Scheduler) Every(axis Axis, period time.Duration, fn func()) {
	sl := s.replace(axis)
	run := s.guard(axis, sl.gen, false, fn)

	ticker := s.clock.NewTicker(period)
	sl.halt = ticker.Stop

	go func() {
		for {
			select {
			case <-ticker.Chan():
				s.post(run, sl.stop)
			case <-sl.stop:
				return
			}
		}
	}()
}

// Cancel drops whatever is pending on axis. It reports whether anything was pending.
func (s *Scheduler) Cancel(axis Axis) bool {
	sl, ok := s.slots[axis]
	if !ok {
		return false
	}
	if sl.halt != nil {
		sl.halt()
	}
	close(sl.stop)
	delete(s.slots, axis)

	log.Debug().Str("axis", string(axis)).Msg("cancelled pending task")
	return true
}

// Pending reports whether a task is scheduled on axis.
func (s *Scheduler) Pending(axis Axis) bool {
	_, ok := s.slots[axis]
	return ok
}

func (s *Scheduler) replace(axis Axis) *slot {
	if s.Cancel(axis) {
		log.Debug().Str("axis", string(axis)).Msg("replaced existing task")
	}
	s.gen++
	sl := &slot{gen: s.gen, stop: make(chan struct{})}
	s.slots[axis] = sl
	return sl
}

// guard wraps fn so it only runs while its slot is still the current one on axis.
func (s *Scheduler) guard(axis Axis, gen uint64, once bool, fn func()) func() {
	return func() {
		cur, ok := s.slots[axis]
		if !ok || cur.gen != gen {
			return
		}
		if once {
			delete(s.slots, axis)
		}
		fn()
	}
}

func (s *Scheduler) post(task func(), cancel <-chan struct{}) {
	select {
	case s.tasks <- task:
	case <-cancel:
	case <-s.done:
	}
}

func (s *Scheduler) drainDeferred() {
	for len(s.deferred) > 0 {
		task := s.deferred[0]
		s.deferred = s.deferred[1:]
		s.exec(task)
	}
}

func (s *Scheduler) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("scheduler task panicked")
		}
	}()
	task()
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
