package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedRNG struct {
	f float64
}

func (r fixedRNG) Float64() float64 { return r.f }
func (r fixedRNG) Intn(n int) int   { return 0 }

func TestJitterIntervalWithinBounds(t *testing.T) {
	min := 5 * time.Minute
	max := 15 * time.Minute

	assert.Equal(t, min, jitterInterval(fixedRNG{f: 0}, min, max))
	assert.Equal(t, 10*time.Minute, jitterInterval(fixedRNG{f: 0.5}, min, max))

	got := jitterInterval(fixedRNG{f: 0.999}, min, max)
	assert.True(t, got >= min && got < max, "got %v", got)
}

func TestJitterIntervalDegenerateRange(t *testing.T) {
	min := 5 * time.Minute

	assert.Equal(t, min, jitterInterval(fixedRNG{f: 0.7}, min, min))
	assert.Equal(t, min, jitterInterval(fixedRNG{f: 0.7}, min, time.Minute))
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2025, 3, 10, 17, 42, 13, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), nextMidnight(now))

	// Month boundary normalizes
	eom := time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), nextMidnight(eom))
}

func TestIsNewDay(t *testing.T) {
	base := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)

	assert.False(t, isNewDay(base, base.Add(5*time.Minute)))
	assert.True(t, isNewDay(base, base.Add(15*time.Minute)))
	assert.True(t, isNewDay(base, base.AddDate(0, 1, 0)))
	assert.True(t, isNewDay(base, base.AddDate(1, 0, 0)))
}

func TestRollDailyCountersArmsThenSkipsSameDay(t *testing.T) {
	// db is nil: a reset attempt on either pass would panic.
	r := &CycleRunner{}
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	r.rollDailyCounters(base)
	assert.Equal(t, base, r.lastPass)

	r.rollDailyCounters(base.Add(4 * time.Hour))
	assert.Equal(t, base, r.lastPass, "same-day pass must not re-arm or reset")
}
