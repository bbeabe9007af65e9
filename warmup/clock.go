package warmup

import (
	"math/rand"
	"sync"
	"time"
)

// Clock supplies the current time. Injected so day-boundary logic is
// testable without waiting on real time.
type Clock interface {
	Now() time.Time
}

// RNG supplies randomness for the engagement simulator and tick jitter.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock { return systemClock{} }

type lockedRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRNG) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRNG) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRNG returns a goroutine-safe RNG seeded from the given value.
func NewRNG(seed int64) RNG {
	return &lockedRNG{r: rand.New(rand.NewSource(seed))}
}
