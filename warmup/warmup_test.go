package warmup

import (
	"io"
	"log"
	"time"

	"mailramp/models"
)

// Shared in-memory fakes for the warmup package tests.

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// scriptRNG replays a fixed sequence of draws so engagement decisions
// are deterministic in tests.
type scriptRNG struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *scriptRNG) Float64() float64 {
	if r.fi >= len(r.floats) {
		return 0.5
	}
	v := r.floats[r.fi]
	r.fi++
	return v
}

func (r *scriptRNG) Intn(n int) int {
	if r.ii >= len(r.ints) {
		return 0
	}
	v := r.ints[r.ii] % n
	r.ii++
	return v
}

// memStore implements ProgressStore, StatStore and MessageStore in
// memory, stamping CreatedAt from the test clock.
type memStore struct {
	clock  Clock
	nextID uint

	days  []models.WarmupDay
	stats []models.WarmupStat
	msgs  []models.WarmupEmail
}

func newMemStore(clock Clock) *memStore {
	return &memStore{clock: clock}
}

func (m *memStore) DaysFor(senderID uint) ([]models.WarmupDay, error) {
	var out []models.WarmupDay
	for _, d := range m.days {
		if d.SenderID == senderID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) CreateDays(days []models.WarmupDay) error {
	for _, d := range days {
		m.nextID++
		d.ID = m.nextID
		d.CreatedAt = m.clock.Now()
		m.days = append(m.days, d)
	}
	return nil
}

func (m *memStore) SaveDay(day *models.WarmupDay) error {
	for i := range m.days {
		if m.days[i].ID == day.ID {
			m.days[i] = *day
			return nil
		}
	}
	return nil
}

func (m *memStore) ResetDays(senderID uint) error {
	for i := range m.days {
		if m.days[i].SenderID == senderID {
			m.days[i].SentToday = 0
			m.days[i].Completed = false
		}
	}
	return nil
}

func (m *memStore) StatFor(senderID uint, date time.Time) (*models.WarmupStat, error) {
	for i := range m.stats {
		if m.stats[i].SenderID == senderID && m.stats[i].Date.Equal(date) {
			out := m.stats[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) SaveStat(stat *models.WarmupStat) error {
	for i := range m.stats {
		if m.stats[i].SenderID == stat.SenderID && m.stats[i].Date.Equal(stat.Date) {
			m.stats[i] = *stat
			return nil
		}
	}
	m.nextID++
	stat.ID = m.nextID
	m.stats = append(m.stats, *stat)
	return nil
}

func (m *memStore) StatsFor(senderID uint) ([]models.WarmupStat, error) {
	var out []models.WarmupStat
	for _, s := range m.stats {
		if s.SenderID == senderID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) CreateMessage(msg *models.WarmupEmail) error {
	m.nextID++
	msg.ID = m.nextID
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memStore) MessageByTracking(trackingID string) (*models.WarmupEmail, error) {
	for i := range m.msgs {
		if m.msgs[i].TrackingID == trackingID {
			out := m.msgs[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memStore) SaveMessage(msg *models.WarmupEmail) error {
	for i := range m.msgs {
		if m.msgs[i].ID == msg.ID {
			m.msgs[i] = *msg
			return nil
		}
	}
	return nil
}

// stubContent avoids burning RNG draws on phrase selection.
type stubContent struct{}

func (stubContent) GenerateContent(fromName string) (string, string, error) {
	return "Quick check-in", "<p>Hello!</p>", nil
}

func (stubContent) GenerateReply(subject string) (string, error) {
	return "Re: " + subject + ", sounds good", nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}
