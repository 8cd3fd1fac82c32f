package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ScoreReport is the result of a successful score submission.
type ScoreReport struct {
	MatchID   int
	MatchName string
	Entries   []ScoreEntry
	Outcome   Outcome
}

// Coordinator holds the current match and turns submitted scores into status transitions.
//
// All methods must be called on the scheduler loop.
type Coordinator struct {
	status   *StatusController
	settings Settings
	config   MatchConfig
	winnerID string
}

func newCoordinator(status *StatusController, settings Settings) *Coordinator {
	return &Coordinator{
		status:   status,
		settings: settings,
	}
}

// Configure replaces the current match, clears the winner and activates the status.
func (c *Coordinator) Configure(cfg MatchConfig) {
	c.config = cfg
	c.winnerID = ""
	c.status.DeactivateDraw()
	c.status.SetActive()

	log.Info().
		Int("match_id", cfg.MatchID).
		Str("match_name", cfg.MatchName).
		Int("participants", len(cfg.Participants)).
		Msg("match configured")
}

// Config returns the current match.
func (c *Coordinator) Config() MatchConfig { return c.config }

// WinnerID returns the recorded winner, or "" when there is none.
func (c *Coordinator) WinnerID() string { return c.winnerID }

// SubmitScores decides the match from one score per participant, in participant order.
// Nothing changes when validation fails.
func (c *Coordinator) SubmitScores(scores []string) (*ScoreReport, error) {
	entries, err := c.scoreEntries(scores)
	if err != nil {
		return nil, err
	}

	outcome := Decide(entries)
	switch outcome.Kind {
	case OutcomeWinner:
		c.winnerID = outcome.WinnerID
		c.status.DeactivateDraw()
		c.status.ShowWithAutoRevert(c.settings.WinnerDisplay)

		log.Info().
			Int("match_id", c.config.MatchID).
			Str("winner_id", outcome.WinnerID).
			Float64("score", outcome.TopScore).
			Msg("match decided")
	default:
		c.winnerID = ""
		c.status.SetDeactive()
		c.status.ScheduleDrawActivation(c.settings.DrawRevealDelay, c.settings.DrawDisplay)

		log.Info().
			Int("match_id", c.config.MatchID).
			Strs("tied", outcome.TiedIDs).
			Float64("score", outcome.TopScore).
			Msg("match drawn")
	}

	return &ScoreReport{
		MatchID:   c.config.MatchID,
		MatchName: c.config.MatchName,
		Entries:   entries,
		Outcome:   outcome,
	}, nil
}

func (c *Coordinator) scoreEntries(scores []string) ([]ScoreEntry, error) {
	if c.config.MatchID < 1 || len(c.config.Participants) < 2 {
		return nil, ErrMatchNotConfigured
	}
	if len(scores) < len(c.config.Participants) {
		return nil, ErrMatchNotConfigured
	}

	entries := make([]ScoreEntry, 0, len(c.config.Participants))
	for i, p := range c.config.Participants {
		if !p.Resolved() {
			return nil, ErrMatchNotConfigured
		}
		raw := strings.TrimSpace(scores[i])
		if raw == "" {
			return nil, ErrMatchNotConfigured
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %q for %s", ErrInvalidScore, raw, p.ID)
		}
		entries = append(entries, ScoreEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			Raw:           raw,
			Value:         value,
		})
	}
	return entries, nil
}
