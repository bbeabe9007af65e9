package warmup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEventComputesReputation(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 100))
	require.NoError(t, agg.RecordEvent(1, EventOpened, 20))
	require.NoError(t, agg.RecordEvent(1, EventSpam, 10))
	require.NoError(t, agg.RecordEvent(1, EventBounced, 10))

	stat, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	require.NotNil(t, stat)

	assert.InDelta(t, 20.0, stat.OpenRate, 1e-9)
	assert.InDelta(t, 10.0, stat.SpamRate, 1e-9)
	assert.InDelta(t, 10.0, stat.BounceRate, 1e-9)
	// 100 - 2*10 - 1.5*10 + 0.5*20 + 1.5*0 = 75
	assert.InDelta(t, 75.0, stat.Reputation, 1e-9)
}

func TestReputationClampedToZero(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	// Everything lands in spam
	require.NoError(t, agg.RecordEvent(1, EventSent, 10))
	require.NoError(t, agg.RecordEvent(1, EventSpam, 10))

	stat, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Zero(t, stat.Reputation)
}

func TestReputationClampedToHundred(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 10))
	require.NoError(t, agg.RecordEvent(1, EventOpened, 10))
	require.NoError(t, agg.RecordEvent(1, EventReplied, 10))

	stat, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.InDelta(t, 100.0, stat.Reputation, 1e-9)
}

func TestRecordEventIsCountAdditive(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 1))
	require.NoError(t, agg.RecordEvent(1, EventSent, 1))
	require.NoError(t, agg.RecordEvent(2, EventSent, 2))

	a, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	b, err := store.StatFor(2, dateOf(clk.Now()))
	require.NoError(t, err)
	assert.Equal(t, a.Sent, b.Sent)
}

func TestRecordEventNonPositiveCountIsNoop(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 0))
	require.NoError(t, agg.RecordEvent(1, EventSent, -4))

	stat, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	assert.Nil(t, stat)
}

func TestRecordEventUnknownKind(t *testing.T) {
	clk := testClock()
	agg := NewAggregator(newMemStore(clk), clk)

	err := agg.RecordEvent(1, EventKind("clicked"), 1)
	assert.Error(t, err)
}

func TestZeroSentFloorsDivision(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	// An open arriving before any recorded send must not divide by zero
	require.NoError(t, agg.RecordEvent(1, EventOpened, 1))

	stat, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.InDelta(t, 100.0, stat.OpenRate, 1e-9)
}

func TestEventsSplitAcrossDays(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 5))
	day1 := dateOf(clk.Now())

	clk.Advance(24 * time.Hour)
	require.NoError(t, agg.RecordEvent(1, EventSent, 7))

	a, err := store.StatFor(1, day1)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Sent)

	b, err := store.StatFor(1, dateOf(clk.Now()))
	require.NoError(t, err)
	assert.Equal(t, 7, b.Sent)
}

func TestOverallStatsAveragesRates(t *testing.T) {
	clk := testClock()
	store := newMemStore(clk)
	agg := NewAggregator(store, clk)

	require.NoError(t, agg.RecordEvent(1, EventSent, 10))
	require.NoError(t, agg.RecordEvent(1, EventOpened, 10))

	clk.Advance(24 * time.Hour)
	require.NoError(t, agg.RecordEvent(1, EventSent, 10))

	overview, err := agg.OverallStats(1)
	require.NoError(t, err)
	assert.Equal(t, 20, overview.Sent)
	assert.Equal(t, 10, overview.Opened)
	// 100% on day one, 0% on day two
	assert.InDelta(t, 50.0, overview.OpenRate, 1e-9)
}

func TestOverallStatsEmptyHistory(t *testing.T) {
	clk := testClock()
	agg := NewAggregator(newMemStore(clk), clk)

	overview, err := agg.OverallStats(42)
	require.NoError(t, err)
	assert.Zero(t, overview.Sent)
	assert.Zero(t, overview.Reputation)
}
