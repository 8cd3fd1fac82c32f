package match

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/matchcontrol/go/internal/models"
)

func TestSingleWinnerFlow(t *testing.T) {
	h := newHarness(t, roster()...)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 120))
	require.NoError(t, h.session.SetPitTarget(h.ctx, 30))
	require.NoError(t, h.session.StartMain(h.ctx))
	require.NoError(t, h.session.StartPit(h.ctx))

	h.tickMainTo(119)
	h.tickMainTo(118)
	h.tickMainTo(117)
	require.Eventually(t, func() bool { return h.pit().Remaining == 27 }, waitFor, pollAt)

	snap, err := h.session.Snapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "117", snap.MainTime)
	assert.Equal(t, "27", snap.PitTime)

	require.NoError(t, h.session.StopMain(h.ctx))
	require.NoError(t, h.session.StopPit(h.ctx))

	h.configure(5, "7", "9")
	assert.Equal(t, StatusActive, h.status().GameStatus)

	report, err := h.session.SubmitScores(h.ctx, []string{"12", "8"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWinner, report.Outcome.Kind)
	assert.Equal(t, "7", report.Outcome.WinnerID)

	assert.Equal(t, StatusView{GameStatus: StatusShown, IsDraw: false}, h.status())
	snap, err = h.session.Snapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "7", snap.WinnerID)
	assert.Equal(t, "5", snap.GameID)

	assert.Equal(t, 3, h.teams.awarded("7"))
	assert.Equal(t, 0, h.teams.awarded("9"))
	assert.Equal(t, []models.GameRecord{{
		GameID:     "5",
		GameName:   "Round",
		Team1Name:  "Falcons",
		Team1Score: "12",
		Team2Name:  "Otters",
		Team2Score: "8",
		WinnerID:   "7",
		IsDraw:     false,
	}}, h.games.saved())

	h.clock.Advance(29 * time.Second)
	assert.Never(t, func() bool { return h.status().GameStatus != StatusShown }, quietly, pollAt)

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.status().GameStatus == StatusDeactive }, waitFor, pollAt)

	snap, err = h.session.Snapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "", snap.WinnerID)
	assert.Equal(t, "", snap.GameID)
}

func TestTwoWayTieFlow(t *testing.T) {
	h := newHarness(t, roster()...)

	h.configure(6, "7", "9")
	report, err := h.session.SubmitScores(h.ctx, []string{"10", "10"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTie, report.Outcome.Kind)
	assert.ElementsMatch(t, []string{"7", "9"}, report.Outcome.TiedIDs)

	require.Eventually(t, func() bool {
		return h.status() == StatusView{GameStatus: StatusShown, IsDraw: true}
	}, waitFor, pollAt)
	assert.Equal(t, []any{"active", "deactive", "shown"}, h.pub.values(FieldGameStatus))

	assert.Equal(t, 0, h.teams.awarded("7"))
	assert.Equal(t, 0, h.teams.awarded("9"))
	records := h.games.saved()
	require.Len(t, records, 1)
	assert.True(t, records[0].IsDraw)
	assert.Equal(t, "0", records[0].WinnerID)

	snap, err := h.session.Snapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", snap.WinnerID)
	assert.True(t, snap.IsDraw)

	h.clock.Advance(29 * time.Second)
	assert.Never(t, func() bool { return !h.status().IsDraw }, quietly, pollAt)

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return h.status() == StatusView{GameStatus: StatusDeactive, IsDraw: false}
	}, waitFor, pollAt)
}

func TestThreeWayMatch(t *testing.T) {
	t.Run("all tied", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(8, "7", "9", "11")

		report, err := h.session.SubmitScores(h.ctx, []string{"5", "5", "5"})
		require.NoError(t, err)
		assert.Equal(t, OutcomeTie, report.Outcome.Kind)
		assert.Equal(t, "deactive", h.pub.values(FieldGameStatus)[1])

		require.Eventually(t, func() bool {
			return h.status() == StatusView{GameStatus: StatusShown, IsDraw: true}
		}, waitFor, pollAt)

		h.clock.Advance(30 * time.Second)
		require.Eventually(t, func() bool {
			return h.status() == StatusView{GameStatus: StatusDeactive, IsDraw: false}
		}, waitFor, pollAt)
	})

	t.Run("tie between two leaders", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(8, "7", "9", "11")

		report, err := h.session.SubmitScores(h.ctx, []string{"5", "9", "9"})
		require.NoError(t, err)
		assert.Equal(t, OutcomeTie, report.Outcome.Kind)
		assert.Equal(t, []string{"9", "11"}, report.Outcome.TiedIDs)

		require.Eventually(t, func() bool { return h.status().IsDraw }, waitFor, pollAt)
		assert.Equal(t, 0, h.teams.awarded("9"))
		assert.Equal(t, 0, h.teams.awarded("11"))

		records := h.games.saved()
		require.Len(t, records, 1)
		assert.Equal(t, "Lynx", records[0].Team3Name)
		assert.Equal(t, "9", records[0].Team3Score)
	})

	t.Run("single leader", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(8, "7", "9", "11")

		report, err := h.session.SubmitScores(h.ctx, []string{"9", "5", "5"})
		require.NoError(t, err)
		assert.Equal(t, "7", report.Outcome.WinnerID)
		assert.Equal(t, 3, h.teams.awarded("7"))
		assert.Equal(t, StatusShown, h.status().GameStatus)
	})
}

func TestSubmitScoresValidation(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t, roster()...)

		_, err := h.session.SubmitScores(h.ctx, []string{"1", "2"})
		assert.ErrorIs(t, err, ErrMatchNotConfigured)
		assert.Empty(t, h.pub.values(FieldGameStatus))
		assert.Empty(t, h.games.saved())
	})

	t.Run("missing score", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(3, "7", "9", "11")

		_, err := h.session.SubmitScores(h.ctx, []string{"1", "2", ""})
		assert.ErrorIs(t, err, ErrMatchNotConfigured)
		_, err = h.session.SubmitScores(h.ctx, []string{"1", "2"})
		assert.ErrorIs(t, err, ErrMatchNotConfigured)
		assert.Equal(t, StatusActive, h.status().GameStatus)
	})

	t.Run("unresolved participant", func(t *testing.T) {
		h := newHarness(t, roster()...)
		cfg := h.configure(3, "7", "404")
		assert.False(t, cfg.Participants[1].Resolved())

		_, err := h.session.SubmitScores(h.ctx, []string{"1", "2"})
		assert.ErrorIs(t, err, ErrMatchNotConfigured)
		assert.Empty(t, h.games.saved())
	})

	t.Run("unresolved third participant falls back to two teams", func(t *testing.T) {
		h := newHarness(t, roster()...)
		cfg := h.configure(3, "7", "9", "404")
		require.Len(t, cfg.Participants, 2)

		report, err := h.session.SubmitScores(h.ctx, []string{"10", "7", ""})
		require.NoError(t, err)
		assert.Equal(t, "7", report.Outcome.WinnerID)
		require.Len(t, report.Entries, 2)

		_, err = h.session.SubmitScores(h.ctx, []string{"10", "7", "1"})
		require.NoError(t, err)

		saved := h.games.saved()
		require.Len(t, saved, 2)
		assert.Equal(t, "Falcons", saved[0].Team1Name)
		assert.Equal(t, "Otters", saved[0].Team2Name)
		assert.Empty(t, saved[0].Team3Name)
		assert.Empty(t, saved[0].Team3Score)
	})

	t.Run("non numeric score", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(3, "7", "9")

		_, err := h.session.SubmitScores(h.ctx, []string{"ten", "2"})
		assert.ErrorIs(t, err, ErrInvalidScore)
		assert.Equal(t, StatusActive, h.status().GameStatus)
	})
}

func TestSubmitScoresStoreFailuresKeepOutcome(t *testing.T) {
	h := newHarness(t, roster()...)
	h.teams.err = errors.New("store unavailable")
	h.games.err = errors.New("store unavailable")

	h.configure(4, "7", "9")
	report, err := h.session.SubmitScores(h.ctx, []string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, "7", report.Outcome.WinnerID)
	assert.Equal(t, StatusShown, h.status().GameStatus)
}

func TestConfigureMatch(t *testing.T) {
	t.Run("resets winner and draw", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(1, "7", "9")
		_, err := h.session.SubmitScores(h.ctx, []string{"2", "1"})
		require.NoError(t, err)

		h.configure(2, "9", "11")
		assert.Equal(t, StatusView{GameStatus: StatusActive, IsDraw: false}, h.status())

		snap, err := h.session.Snapshot(h.ctx)
		require.NoError(t, err)
		assert.Equal(t, "0", snap.WinnerID)
		assert.Equal(t, "2", snap.GameID)
		assert.Equal(t, "9", snap.Team1ID)
		assert.Equal(t, "11", snap.Team2ID)
		assert.Equal(t, "", snap.Team3ID)
	})

	t.Run("pending winner revert survives reconfigure", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(1, "7", "9")
		_, err := h.session.SubmitScores(h.ctx, []string{"1", "2"})
		require.NoError(t, err)

		h.clock.Advance(10 * time.Second)
		h.configure(2, "7", "9")
		assert.Equal(t, StatusActive, h.status().GameStatus)

		h.clock.Advance(20 * time.Second)
		require.Eventually(t, func() bool { return h.status().GameStatus == StatusDeactive }, waitFor, pollAt)
	})

	t.Run("deactivate drops pending winner revert", func(t *testing.T) {
		h := newHarness(t, roster()...)
		h.configure(1, "7", "9")
		_, err := h.session.SubmitScores(h.ctx, []string{"1", "2"})
		require.NoError(t, err)

		_, err = h.session.SetDeactive(h.ctx)
		require.NoError(t, err)
		h.configure(2, "7", "9")

		h.clock.Advance(30 * time.Second)
		assert.Never(t, func() bool { return h.status().GameStatus != StatusActive }, quietly, pollAt)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		h := newHarness(t, roster()...)

		_, err := h.session.ConfigureMatch(h.ctx, MatchRequest{MatchID: 0, ParticipantIDs: []string{"7", "9"}})
		assert.ErrorIs(t, err, ErrInvalidMatchConfig)
		_, err = h.session.ConfigureMatch(h.ctx, MatchRequest{MatchID: 1, ParticipantIDs: []string{"7"}})
		assert.ErrorIs(t, err, ErrInvalidMatchConfig)
		assert.Equal(t, StatusDeactive, h.status().GameStatus)
	})
}

func TestGameDetailsBlankWhileDeactive(t *testing.T) {
	h := newHarness(t, roster()...)

	details, err := h.session.GameDetails(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, GameDetails{}, details)

	ids, err := h.session.GameIDSnapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "0", ids.GameID)

	h.configure(12, "7", "9")
	details, err = h.session.GameDetails(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, details.GameID)
	assert.Equal(t, TeamSlot{ID: "7", Name: "Falcons", Leader: "Ana", Logo: "falcons.png"}, details.Team1)
	assert.Equal(t, TeamSlot{}, details.Team3)

	ids, err = h.session.GameIDSnapshot(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, "12", ids.GameID)

	_, err = h.session.SetDeactive(h.ctx)
	require.NoError(t, err)
	details, err = h.session.GameDetails(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, GameDetails{}, details)
}
