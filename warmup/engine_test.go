package warmup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(clk Clock, store ProgressStore) *Engine {
	return NewEngine(store, clk, Config{
		DailyIncrease:  5,
		MaxDailyEmails: 100,
		WarmupDays:     30,
	}, testLogger())
}

func TestTargetForDayCurve(t *testing.T) {
	engine := newTestEngine(testClock(), newMemStore(testClock()))

	assert.Equal(t, 5, engine.TargetForDay(1))
	assert.Equal(t, 50, engine.TargetForDay(10))
	assert.Equal(t, 75, engine.TargetForDay(15))
	assert.Equal(t, 100, engine.TargetForDay(20))
	assert.Equal(t, 100, engine.TargetForDay(25))

	// Out-of-range days are clamped to the curve
	assert.Equal(t, 5, engine.TargetForDay(0))
	assert.Equal(t, 5, engine.TargetForDay(-3))
	assert.Equal(t, 100, engine.TargetForDay(31))
}

func TestEnsureProgressIdempotent(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	days, err := engine.EnsureProgress(1)
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, 5, days[0].TargetVolume)
	assert.Equal(t, 100, days[29].TargetVolume)

	// Second call must not duplicate records
	again, err := engine.EnsureProgress(1)
	require.NoError(t, err)
	assert.Len(t, again, 30)
}

func TestCurrentDayAdvancesWithClock(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	day, err := engine.CurrentDay(1)
	require.NoError(t, err)
	assert.Equal(t, 1, day)

	clk.Advance(25 * time.Hour)
	day, err = engine.CurrentDay(1)
	require.NoError(t, err)
	assert.Equal(t, 2, day)

	// Way past the schedule: clamp to the last day
	clk.Advance(200 * 24 * time.Hour)
	day, err = engine.CurrentDay(1)
	require.NoError(t, err)
	assert.Equal(t, 30, day)
}

func TestRemainingTodayClosesSkippedDays(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	_, err := engine.EnsureProgress(1)
	require.NoError(t, err)

	// Idle for three full days, now on day 4
	clk.Advance(3 * 24 * time.Hour)
	remaining, err := engine.RemainingToday(1)
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)

	days, err := store.DaysFor(1)
	require.NoError(t, err)
	for _, d := range days[:3] {
		assert.True(t, d.Completed, "skipped day %d should be closed", d.Day)
		assert.Zero(t, d.SentToday, "skipped day %d must not be back-filled", d.Day)
	}
	assert.False(t, days[3].Completed)
}

func TestRecordSendCompletesDay(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	_, err := engine.EnsureProgress(1)
	require.NoError(t, err)

	// Day 1 target is 5
	for i := 0; i < 5; i++ {
		remaining, err := engine.RemainingToday(1)
		require.NoError(t, err)
		assert.Equal(t, 5-i, remaining)
		require.NoError(t, engine.RecordSend(1))
	}

	remaining, err := engine.RemainingToday(1)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	days, err := store.DaysFor(1)
	require.NoError(t, err)
	assert.True(t, days[0].Completed)
	assert.Equal(t, 5, days[0].SentToday)
}

func TestResetProgressClearsCountersAndFlags(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	_, err := engine.EnsureProgress(1)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, engine.RecordSend(1))
	}

	require.NoError(t, engine.ResetProgress(1))

	days, err := store.DaysFor(1)
	require.NoError(t, err)
	for _, d := range days {
		assert.Zero(t, d.SentToday)
		assert.False(t, d.Completed)
	}

	// The day-one anchor survives a reset
	day, err := engine.CurrentDay(1)
	require.NoError(t, err)
	assert.Equal(t, 1, day)
}

func TestStatusPollRacingSendsLosesNothing(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	engine := newTestEngine(clk, store)

	_, err := engine.EnsureProgress(1)
	require.NoError(t, err)

	// A status poll reads and rewrites day records while the runner is
	// recording sends for the same mailbox; the per-sender lock must keep
	// every increment.
	const sends = 40
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < sends; i++ {
			_ = engine.RecordSend(1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < sends; i++ {
			_, _ = engine.RemainingToday(1)
		}
	}()
	wg.Wait()

	days, err := store.DaysFor(1)
	require.NoError(t, err)
	assert.Equal(t, sends, days[0].SentToday)
}
