package warmup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailramp/models"
)

func newTestSimulator(rng RNG) (*Simulator, *memStore) {
	clk := testClock()
	store := newMemStore(clk)
	tracker := NewTracker(store, NewAggregator(store, clk), clk)
	sim := NewSimulator(tracker, stubContent{}, rng, SimulatorConfig{
		OpenProbability:  0.92,
		ReplyProbability: 0.75,
		MinDelay:         time.Hour, // timers never fire during a test
		MaxDelay:         2 * time.Hour,
	}, testLogger())
	return sim, store
}

func seedProbe(t *testing.T, store *memStore) {
	t.Helper()
	clk := store.clock
	tracker := NewTracker(store, NewAggregator(store, clk), clk)
	require.NoError(t, tracker.Record(&models.WarmupEmail{
		SenderID:   1,
		PartnerID:  2,
		TrackingID: "t1",
		Day:        1,
		Subject:    "Quick check-in",
	}))
}

func TestEngageOpensAndReplies(t *testing.T) {
	sim, store := newTestSimulator(&scriptRNG{floats: []float64{0.1, 0.1}})
	seedProbe(t, store)

	sim.Engage(1, "t1", "Quick check-in")

	msg, _ := store.MessageByTracking("t1")
	assert.Equal(t, models.StatusReplied, msg.Status)
	assert.Equal(t, "Re: Quick check-in, sounds good", msg.ReplyBody)
}

func TestEngageSkipsOpen(t *testing.T) {
	sim, store := newTestSimulator(&scriptRNG{floats: []float64{0.95}})
	seedProbe(t, store)

	sim.Engage(1, "t1", "Quick check-in")

	msg, _ := store.MessageByTracking("t1")
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.Nil(t, msg.OpenedAt)
}

func TestEngageOpensWithoutReply(t *testing.T) {
	sim, store := newTestSimulator(&scriptRNG{floats: []float64{0.1, 0.9}})
	seedProbe(t, store)

	sim.Engage(1, "t1", "Quick check-in")

	msg, _ := store.MessageByTracking("t1")
	assert.Equal(t, models.StatusOpened, msg.Status)
	assert.Nil(t, msg.RepliedAt)
}

func TestScheduleTracksAndCancelDrops(t *testing.T) {
	sim, _ := newTestSimulator(&scriptRNG{floats: []float64{0.5, 0.5, 0.5}})

	sim.Schedule(1, "t1", "a")
	sim.Schedule(1, "t2", "b")
	sim.Schedule(2, "t3", "c")
	assert.Equal(t, 2, sim.PendingCount(1))
	assert.Equal(t, 1, sim.PendingCount(2))

	sim.Cancel(1)
	assert.Zero(t, sim.PendingCount(1))
	assert.Equal(t, 1, sim.PendingCount(2))
}

func TestCancelledDecisionDoesNotEngage(t *testing.T) {
	// An engagement-friendly script: if the decision ran anyway, the
	// probe would flip to replied.
	sim, store := newTestSimulator(&scriptRNG{floats: []float64{0.5, 0.1, 0.1}})
	seedProbe(t, store)

	sim.Schedule(1, "t1", "Quick check-in")
	sim.Cancel(1)

	// The callback of a timer that fired just before the cancel still
	// runs; it must find its registration gone and do nothing.
	sim.fire(1, "t1", "Quick check-in")

	msg, err := store.MessageByTracking("t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.Nil(t, msg.OpenedAt)
}

func TestStopRefusesNewWork(t *testing.T) {
	sim, _ := newTestSimulator(&scriptRNG{floats: []float64{0.5}})

	sim.Schedule(1, "t1", "a")
	sim.Stop()
	assert.Zero(t, sim.PendingCount(1))

	sim.Schedule(1, "t2", "b")
	assert.Zero(t, sim.PendingCount(1))
}
