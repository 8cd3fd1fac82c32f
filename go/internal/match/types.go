package match

import (
	"errors"
	"time"
)

var (
	// ErrMatchNotConfigured is returned when scores are submitted without a fully
	// configured match. No state is changed.
	ErrMatchNotConfigured = errors.New("match details not set")
	// ErrInvalidMatchConfig is returned for match configurations that can never be valid.
	ErrInvalidMatchConfig = errors.New("invalid match configuration")
	// ErrInvalidScore is returned when a submitted score is not numeric.
	ErrInvalidScore = errors.New("invalid score")
	// ErrInvalidDuration is returned for negative countdown targets or thresholds.
	ErrInvalidDuration = errors.New("invalid duration")
)

// GameStatus is the announcement phase of the current match.
type GameStatus string

const (
	StatusActive   GameStatus = "active"
	StatusShown    GameStatus = "shown"
	StatusDeactive GameStatus = "deactive"
)

// AvailableStatuses lists every status in display order.
var AvailableStatuses = []GameStatus{StatusActive, StatusShown, StatusDeactive}

// Field names of the externally mirrored state.
const (
	FieldGameStatus = "gameStatus"
	FieldIsDraw     = "isDraw"
	FieldPitOpen    = "pitopen"
)

// StateChange is a single write of a mirrored field.
type StateChange struct {
	Field string
	Value any
	At    time.Time
}

// Publisher receives state changes from the scheduler loop. Publish must not block.
type Publisher interface {
	Publish(change StateChange)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(change StateChange)

func (f PublisherFunc) Publish(change StateChange) { f(change) }

type discardPublisher struct{}

func (discardPublisher) Publish(StateChange) {}

// Observer is notified of countdown activity.
type Observer interface {
	Tick(timer string, remaining int)
}

type discardObserver struct{}

func (discardObserver) Tick(string, int) {}

// Participant is a team taking part in the current match.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Leader string `json:"leader"`
	Logo   string `json:"logo"`
}

// Resolved reports whether the participant was found in the team directory.
func (p Participant) Resolved() bool {
	return p.ID != ""
}

// MatchConfig describes the match currently on air.
type MatchConfig struct {
	MatchID      int
	MatchName    string
	Participants []Participant
}

// Settings holds the tunable durations and amounts of a session.
type Settings struct {
	PitOpenThreshold   int           `yaml:"pit_open_threshold"`
	TickInterval       time.Duration `yaml:"tick_interval"`
	WinnerDisplay      time.Duration `yaml:"winner_display"`
	DrawDisplay        time.Duration `yaml:"draw_display"`
	DrawRevealDelay    time.Duration `yaml:"draw_reveal_delay"`
	ActivationDelay    time.Duration `yaml:"activation_delay"`
	WinnerRewardPoints int           `yaml:"winner_reward_points"`
}

// DefaultSettings returns the settings used by the live show.
func DefaultSettings() Settings {
	return Settings{
		PitOpenThreshold:   60,
		TickInterval:       time.Second,
		WinnerDisplay:      30 * time.Second,
		DrawDisplay:        30 * time.Second,
		DrawRevealDelay:    0,
		ActivationDelay:    30 * time.Second,
		WinnerRewardPoints: 3,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.TickInterval <= 0 {
		s.TickInterval = d.TickInterval
	}
	if s.WinnerDisplay <= 0 {
		s.WinnerDisplay = d.WinnerDisplay
	}
	if s.DrawDisplay <= 0 {
		s.DrawDisplay = d.DrawDisplay
	}
	if s.ActivationDelay <= 0 {
		s.ActivationDelay = d.ActivationDelay
	}
	if s.PitOpenThreshold < 0 {
		s.PitOpenThreshold = d.PitOpenThreshold
	}
	if s.DrawRevealDelay < 0 {
		s.DrawRevealDelay = 0
	}
	return s
}
