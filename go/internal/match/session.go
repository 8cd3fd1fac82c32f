package match

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/matchcontrol/go/internal/models"
)

// TeamDirectory resolves participants and credits winners.
type TeamDirectory interface {
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	AddPoints(ctx context.Context, id string, points int) (int, error)
}

// GameArchive stores decided matches.
type GameArchive interface {
	SaveGame(ctx context.Context, record models.GameRecord) error
}

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Clock     clockwork.Clock
	Publisher Publisher
	Observer  Observer
	Settings  Settings
}

// MatchRequest identifies the match to put on air.
type MatchRequest struct {
	MatchID        int
	MatchName      string
	ParticipantIDs []string
}

// Session is the single live match: both countdowns, the status controller and the
// coordinator, all owned by one scheduler loop. Its methods are safe for concurrent use.
type Session struct {
	sched    *Scheduler
	main     *Countdown
	pit      *Countdown
	status   *StatusController
	coord    *Coordinator
	teams    TeamDirectory
	games    GameArchive
	settings Settings
}

// NewSession builds a session. Call Run to start processing.
func NewSession(teams TeamDirectory, games GameArchive, opts Options) *Session {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = discardPublisher{}
	}
	observer := opts.Observer
	if observer == nil {
		observer = discardObserver{}
	}
	settings := opts.Settings.withDefaults()

	sched := NewScheduler(opts.Clock)
	status := newStatusController(sched, publisher)

	main := newCountdown("main", AxisMainTick, sched, settings.TickInterval, observer)
	main.watchPitOpen(settings.PitOpenThreshold, publisher)
	pit := newCountdown("pit", AxisPitTick, sched, settings.TickInterval, observer)

	return &Session{
		sched:    sched,
		main:     main,
		pit:      pit,
		status:   status,
		coord:    newCoordinator(status, settings),
		teams:    teams,
		games:    games,
		settings: settings,
	}
}

// Run drives the session until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	return s.sched.Run(ctx)
}

// Settings returns the effective session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

func (s *Session) SetMainTarget(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("%w: main target %d", ErrInvalidDuration, seconds)
	}
	return s.sched.Do(ctx, func() { s.main.Configure(seconds) })
}

func (s *Session) SetPitTarget(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("%w: pit target %d", ErrInvalidDuration, seconds)
	}
	return s.sched.Do(ctx, func() { s.pit.Configure(seconds) })
}

func (s *Session) SetPitOpenThreshold(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("%w: pit open threshold %d", ErrInvalidDuration, seconds)
	}
	return s.sched.Do(ctx, func() {
		s.main.SetPitOpenThreshold(seconds)
		log.Info().Int("threshold", seconds).Msg("pit open threshold changed")
	})
}

func (s *Session) StartMain(ctx context.Context) error { return s.sched.Do(ctx, s.main.Start) }

func (s *Session) StopMain(ctx context.Context) error { return s.sched.Do(ctx, s.main.Stop) }

func (s *Session) ResetMain(ctx context.Context) error { return s.sched.Do(ctx, s.main.Reset) }

func (s *Session) StartPit(ctx context.Context) error { return s.sched.Do(ctx, s.pit.Start) }

func (s *Session) StopPit(ctx context.Context) error { return s.sched.Do(ctx, s.pit.Stop) }

func (s *Session) ResetPit(ctx context.Context) error { return s.sched.Do(ctx, s.pit.Reset) }

// ConfigureMatch resolves the participants and puts the match on air. First and second
// ids that cannot be resolved become placeholders and are rejected when scores are
// submitted; an unresolved third id is dropped.
func (s *Session) ConfigureMatch(ctx context.Context, req MatchRequest) (MatchConfig, error) {
	if req.MatchID < 1 {
		return MatchConfig{}, fmt.Errorf("%w: match id %d", ErrInvalidMatchConfig, req.MatchID)
	}
	if len(req.ParticipantIDs) < 2 || len(req.ParticipantIDs) > 3 {
		return MatchConfig{}, fmt.Errorf("%w: %d participants", ErrInvalidMatchConfig, len(req.ParticipantIDs))
	}

	cfg := MatchConfig{
		MatchID:      req.MatchID,
		MatchName:    req.MatchName,
		Participants: make([]Participant, 0, len(req.ParticipantIDs)),
	}
	for i, id := range req.ParticipantIDs {
		p := s.resolve(ctx, id)
		// An unknown third team leaves a two-team match.
		if i == 2 && !p.Resolved() {
			log.Warn().Str("team_id", id).Int("match_id", req.MatchID).Msg("third participant not found, playing two teams")
			continue
		}
		cfg.Participants = append(cfg.Participants, p)
	}

	if err := s.sched.Do(ctx, func() { s.coord.Configure(cfg) }); err != nil {
		return MatchConfig{}, err
	}
	return cfg, nil
}

func (s *Session) resolve(ctx context.Context, id string) Participant {
	id = strings.TrimSpace(id)
	if id == "" {
		return Participant{}
	}

	team, err := s.teams.GetTeam(ctx, id)
	if err != nil || team == nil {
		log.Warn().Err(err).Str("team_id", id).Msg("participant lookup missed")
		return Participant{}
	}
	return Participant{ID: id, Name: team.Name, Leader: team.Leader, Logo: team.Logo}
}

// SubmitScores decides the current match. The winner's points and the game record are
// written after the outcome is applied; store failures are logged and do not undo it.
func (s *Session) SubmitScores(ctx context.Context, scores []string) (*ScoreReport, error) {
	var (
		report *ScoreReport
		err    error
	)
	if doErr := s.sched.Do(ctx, func() { report, err = s.coord.SubmitScores(scores) }); doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}

	if report.Outcome.Kind == OutcomeWinner && s.settings.WinnerRewardPoints > 0 {
		total, err := s.teams.AddPoints(ctx, report.Outcome.WinnerID, s.settings.WinnerRewardPoints)
		if err != nil {
			log.Error().Err(err).Str("team_id", report.Outcome.WinnerID).Msg("failed to award winner points")
		} else {
			log.Info().
				Str("team_id", report.Outcome.WinnerID).
				Int("points", total).
				Msg("winner points awarded")
		}
	}

	if err := s.games.SaveGame(ctx, report.Record()); err != nil {
		log.Error().Err(err).Int("match_id", report.MatchID).Msg("failed to save game record")
	}
	return report, nil
}

// Record converts the report into its stored form.
func (r *ScoreReport) Record() models.GameRecord {
	rec := models.GameRecord{
		GameID:   strconv.Itoa(r.MatchID),
		GameName: r.MatchName,
		WinnerID: r.Outcome.WinnerID,
		IsDraw:   r.Outcome.IsDraw(),
	}
	if rec.WinnerID == "" {
		rec.WinnerID = "0"
	}
	for i, e := range r.Entries {
		switch i {
		case 0:
			rec.Team1Name, rec.Team1Score = e.Name, e.Raw
		case 1:
			rec.Team2Name, rec.Team2Score = e.Name, e.Raw
		case 2:
			rec.Team3Name, rec.Team3Score = e.Name, e.Raw
		}
	}
	return rec
}

func (s *Session) SetActive(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, s.status.SetActive)
}

func (s *Session) SetShown(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, s.status.SetShown)
}

func (s *Session) SetDeactive(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, s.status.SetDeactive)
}

// ScheduleActivation activates the match after d. A non-positive d uses the configured delay.
func (s *Session) ScheduleActivation(ctx context.Context, d time.Duration) (StatusView, error) {
	if d <= 0 {
		d = s.settings.ActivationDelay
	}
	return s.transition(ctx, func() { s.status.ScheduleActivation(d) })
}

func (s *Session) ActivateDraw(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, func() { s.status.ActivateDraw(s.settings.DrawDisplay) })
}

func (s *Session) DeactivateDraw(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, s.status.DeactivateDraw)
}

func (s *Session) DeactivateDrawAndStatus(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, s.status.DeactivateDrawAndStatus)
}

// Status returns the current status and draw flag.
func (s *Session) Status(ctx context.Context) (StatusView, error) {
	return s.transition(ctx, func() {})
}

func (s *Session) transition(ctx context.Context, fn func()) (StatusView, error) {
	var view StatusView
	err := s.sched.Do(ctx, func() {
		fn()
		view = StatusView{GameStatus: s.status.Status(), IsDraw: s.status.Draw()}
	})
	return view, err
}

func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.sched.Do(ctx, func() { snap = s.snapshot() })
	return snap, err
}

func (s *Session) GameIDSnapshot(ctx context.Context) (GameIDSnapshot, error) {
	var snap GameIDSnapshot
	err := s.sched.Do(ctx, func() { snap = s.gameIDSnapshot() })
	return snap, err
}

func (s *Session) GameDetails(ctx context.Context) (GameDetails, error) {
	var details GameDetails
	err := s.sched.Do(ctx, func() { details = s.gameDetails() })
	return details, err
}

func (s *Session) TimerStatus(ctx context.Context) (TimerStatus, error) {
	var status TimerStatus
	err := s.sched.Do(ctx, func() {
		status.MainRunning = s.main.Running() && s.main.Remaining() > 0
	})
	return status, err
}

// CountdownState is a point-in-time view of one countdown.
type CountdownState struct {
	Target    int  `json:"target"`
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
}

// Countdowns returns the main and pit countdown states.
func (s *Session) Countdowns(ctx context.Context) (main, pit CountdownState, err error) {
	err = s.sched.Do(ctx, func() {
		main = CountdownState{Target: s.main.Target(), Remaining: s.main.Remaining(), Running: s.main.Running()}
		pit = CountdownState{Target: s.pit.Target(), Remaining: s.pit.Remaining(), Running: s.pit.Running()}
	})
	return main, pit, err
}

// PitOpenThreshold returns the current pit-open threshold.
func (s *Session) PitOpenThreshold(ctx context.Context) (int, error) {
	var threshold int
	err := s.sched.Do(ctx, func() { threshold = s.main.PitOpenThreshold() })
	return threshold, err
}
