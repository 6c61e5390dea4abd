package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_OverallPercentFormula(t *testing.T) {
	t.Parallel()

	// image 800, video 200; loaded 500 and 100 → fraction 0.6 → 54%
	task := newTask()
	task.setTotals(800, 200)
	task.report(channelImage, 500)
	task.report(channelVideo, 100)

	assert.Equal(t, 54, task.Snapshot().Percent)
}

func TestTask_PercentNeverExceedsCeilingBeforePersist(t *testing.T) {
	t.Parallel()

	task := newTask()
	task.setTotals(100, 0)
	task.report(channelImage, 100)

	assert.Equal(t, 90, task.Snapshot().Percent, "the last 10%% belongs to persistence")
}

func TestTask_PercentIsMonotonic(t *testing.T) {
	t.Parallel()

	task := newTask()
	task.setTotals(1000, 0)

	last := 0
	for _, loaded := range []int64{100, 350, 350, 900, 1000} {
		task.report(channelImage, loaded)
		pct := task.Snapshot().Percent
		assert.GreaterOrEqual(t, pct, last)
		last = pct
	}
	assert.Equal(t, 90, last)
}

func TestTask_LoadedClampedToChannelTotal(t *testing.T) {
	t.Parallel()

	// the transport also counts multipart framing; those extra bytes must
	// not push the file channel past its size
	task := newTask()
	task.setTotals(1000, 0)
	task.report(channelImage, 1200)

	snap := task.Snapshot()
	assert.Equal(t, int64(1000), snap.Image.Loaded)
	assert.Equal(t, 90, snap.Percent)
}

func TestTask_FinalizingParksAtCeiling(t *testing.T) {
	t.Parallel()

	// zero selected files: the bar jumps straight to the ceiling
	task := newTask()
	task.setTotals(0, 0)
	task.setPhase(PhaseFinalizing)

	snap := task.Snapshot()
	assert.Equal(t, PhaseFinalizing, snap.Phase)
	assert.Equal(t, 90, snap.Percent)
}

func TestTask_ETAFromAverageThroughput(t *testing.T) {
	t.Parallel()

	task := newTask()
	task.setTotals(1000, 0)
	task.started = time.Now().Add(-2 * time.Second)
	task.report(channelImage, 500)

	// 500 bytes in ~2s → 250 B/s → 500 remaining ≈ 2s
	eta := task.Snapshot().ETA
	assert.InDelta(t, float64(2*time.Second), float64(eta), float64(200*time.Millisecond))
}

func TestTask_ETAZeroBeforeFirstByte(t *testing.T) {
	t.Parallel()

	task := newTask()
	task.setTotals(1000, 0)
	assert.Zero(t, task.Snapshot().ETA)
}

func TestTask_TerminalStates(t *testing.T) {
	t.Parallel()

	t.Run("persisted", func(t *testing.T) {
		task := newTask()
		task.setTotals(10, 0)
		task.report(channelImage, 10)
		task.succeed(nil)

		select {
		case <-task.Done():
		default:
			t.Fatal("done must be closed")
		}
		assert.Equal(t, PhasePersisted, task.Phase())
		assert.Equal(t, 100, task.Snapshot().Percent)
		require.NoError(t, task.Err())
	})

	t.Run("failed discards progress", func(t *testing.T) {
		task := newTask()
		task.setTotals(10, 0)
		task.report(channelImage, 5)
		task.fail(assert.AnError)

		select {
		case <-task.Done():
		default:
			t.Fatal("done must be closed")
		}
		assert.Equal(t, PhaseFailed, task.Phase())
		assert.ErrorIs(t, task.Err(), assert.AnError)
		assert.Zero(t, task.Snapshot().Image.Loaded)
	})
}
