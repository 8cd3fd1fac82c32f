package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownRunsToZeroAndStops(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 3))
	require.NoError(t, h.session.StartMain(h.ctx))

	h.tickMainTo(2)
	h.tickMainTo(1)
	h.tickMainTo(0)

	status, err := h.session.TimerStatus(h.ctx)
	require.NoError(t, err)
	assert.False(t, status.MainRunning)
	assert.True(t, h.main().Running)

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !h.main().Running }, waitFor, pollAt)
	assert.Equal(t, 0, h.main().Remaining)
	assert.Equal(t, 3, h.main().Target)
}

func TestCountdownDoubleStartTicksOnce(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetPitTarget(h.ctx, 10))
	require.NoError(t, h.session.StartPit(h.ctx))
	require.NoError(t, h.session.StartPit(h.ctx))

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.pit().Remaining == 9 }, waitFor, pollAt)
	assert.Never(t, func() bool { return h.pit().Remaining < 9 }, quietly, pollAt)

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.pit().Remaining == 8 }, waitFor, pollAt)
	assert.Never(t, func() bool { return h.pit().Remaining < 8 }, quietly, pollAt)
}

func TestCountdownStopKeepsRemaining(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 120))
	require.NoError(t, h.session.StartMain(h.ctx))
	h.tickMainTo(119)

	require.NoError(t, h.session.StopMain(h.ctx))
	h.clock.Advance(5 * time.Second)

	assert.Never(t, func() bool { return h.main().Remaining != 119 }, quietly, pollAt)
	assert.False(t, h.main().Running)
}

func TestCountdownResetRestoresTarget(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 90))
	require.NoError(t, h.session.StartMain(h.ctx))
	h.tickMainTo(89)
	h.tickMainTo(88)

	require.NoError(t, h.session.ResetMain(h.ctx))
	main := h.main()
	assert.Equal(t, 90, main.Remaining)
	assert.False(t, main.Running)

	h.clock.Advance(time.Second)
	assert.Never(t, func() bool { return h.main().Remaining != 90 }, quietly, pollAt)
}

func TestCountdownConfigureWhileRunningKeepsTicking(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 10))
	require.NoError(t, h.session.StartMain(h.ctx))
	h.tickMainTo(9)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 50))
	assert.True(t, h.main().Running)
	h.tickMainTo(49)
}

func TestCountdownStartAtZeroStopsOnFirstTick(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetPitTarget(h.ctx, 0))
	require.NoError(t, h.session.StartPit(h.ctx))

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !h.pit().Running }, waitFor, pollAt)
	assert.Equal(t, 0, h.pit().Remaining)
}

func TestCountdownRejectsNegativeTarget(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.session.SetMainTarget(h.ctx, -1), ErrInvalidDuration)
	assert.ErrorIs(t, h.session.SetPitOpenThreshold(h.ctx, -5), ErrInvalidDuration)
}

func TestPitOpenSignalledOnEveryTickBelowThreshold(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetPitOpenThreshold(h.ctx, 3))
	require.NoError(t, h.session.SetMainTarget(h.ctx, 5))
	require.NoError(t, h.session.StartMain(h.ctx))

	assert.Equal(t, []any{false, false}, h.pub.values(FieldPitOpen))

	h.tickMainTo(4)
	assert.Equal(t, 0, h.pub.count(FieldPitOpen, true))

	h.tickMainTo(3)
	h.tickMainTo(2)
	h.tickMainTo(1)
	h.tickMainTo(0)
	assert.Equal(t, 4, h.pub.count(FieldPitOpen, true))

	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return !h.main().Running }, waitFor, pollAt)
	assert.Equal(t, 4, h.pub.count(FieldPitOpen, true))
}

func TestPitOpenNotClearedOnStartBelowThreshold(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetMainTarget(h.ctx, 30))
	require.NoError(t, h.session.StartMain(h.ctx))

	// configure publishes false, start does not because 60 >= 30
	assert.Equal(t, []any{false}, h.pub.values(FieldPitOpen))

	h.tickMainTo(29)
	assert.Equal(t, 1, h.pub.count(FieldPitOpen, true))

	require.NoError(t, h.session.ResetMain(h.ctx))
	values := h.pub.values(FieldPitOpen)
	assert.Equal(t, false, values[len(values)-1])
}

func TestPitCountdownNeverSignalsPitOpen(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.session.SetPitTarget(h.ctx, 2))
	require.NoError(t, h.session.StartPit(h.ctx))
	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.pit().Remaining == 1 }, waitFor, pollAt)

	assert.Empty(t, h.pub.values(FieldPitOpen))
}
