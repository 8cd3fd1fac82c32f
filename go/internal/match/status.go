package match

import (
	"time"

	"github.com/rs/zerolog/log"
)

// StatusController owns the game status and the draw flag.
//
// Every mutation is published as it happens. All methods must be called on the
// scheduler loop.
type StatusController struct {
	sched     *Scheduler
	publisher Publisher
	status    GameStatus
	draw      bool
}

func newStatusController(sched *Scheduler, publisher Publisher) *StatusController {
	return &StatusController{
		sched:     sched,
		publisher: publisher,
		status:    StatusDeactive,
	}
}

func (s *StatusController) Status() GameStatus { return s.status }

func (s *StatusController) Draw() bool { return s.draw }

func (s *StatusController) SetActive() {
	s.setStatus(StatusActive)
}

func (s *StatusController) SetShown() {
	s.setStatus(StatusShown)
}

// SetDeactive deactivates the match and drops any pending status transition.
func (s *StatusController) SetDeactive() {
	s.setStatus(StatusDeactive)
	s.sched.Cancel(AxisStatus)
}

// ScheduleActivation sets the status to active after d, replacing any pending status transition.
func (s *StatusController) ScheduleActivation(d time.Duration) {
	s.sched.After(AxisStatus, d, s.SetActive)
	log.Info().Dur("delay", d).Msg("game status activation scheduled")
}

// ShowWithAutoRevert shows the result and deactivates again after d.
func (s *StatusController) ShowWithAutoRevert(d time.Duration) {
	s.SetShown()
	s.sched.After(AxisStatus, d, func() {
		s.SetDeactive()
		log.Info().Msg("game status auto-deactivated")
	})
}

// ActivateDraw raises the draw flag and shows it, reverting both after revertAfter.
func (s *StatusController) ActivateDraw(revertAfter time.Duration) {
	s.setDraw(true)
	s.setStatus(StatusShown)
	s.sched.After(AxisDraw, revertAfter, func() {
		s.DeactivateDrawAndStatus()
		log.Info().Msg("draw auto-deactivated")
	})
}

// DeactivateDraw clears the draw flag and its pending revert.
func (s *StatusController) DeactivateDraw() {
	s.setDraw(false)
	s.sched.Cancel(AxisDraw)
}

// DeactivateDrawAndStatus clears the draw flag and deactivates the match.
func (s *StatusController) DeactivateDrawAndStatus() {
	s.setDraw(false)
	s.setStatus(StatusDeactive)
	s.sched.Cancel(AxisDraw)
}

// ScheduleDrawActivation activates the draw after delay. A zero delay activates it once
// the current operation has finished.
func (s *StatusController) ScheduleDrawActivation(delay, revertAfter time.Duration) {
	s.sched.After(AxisDraw, delay, func() {
		s.ActivateDraw(revertAfter)
	})
}

func (s *StatusController) setStatus(status GameStatus) {
	s.status = status
	s.publish(FieldGameStatus, string(status))
	log.Info().Str("status", string(status)).Msg("game status changed")
}

func (s *StatusController) setDraw(draw bool) {
	s.draw = draw
	s.publish(FieldIsDraw, draw)
}

func (s *StatusController) publish(field string, value any) {
	s.publisher.Publish(StateChange{
		Field: field,
		Value: value,
		At:    s.sched.Clock().Now(),
	})
}
