package warmup

import (
	"fmt"
	"time"

	"mailramp/models"
)

// EventKind is one of the raw engagement counters on a daily stat row.
type EventKind string

const (
	EventSent    EventKind = "sent"
	EventOpened  EventKind = "opened"
	EventReplied EventKind = "replied"
	EventSpam    EventKind = "spam"
	EventBounced EventKind = "bounced"
)

// Aggregator turns raw send/open/reply/spam/bounce events into daily
// rates and a single 0-100 reputation score.
type Aggregator struct {
	store StatStore
	clock Clock
}

func NewAggregator(store StatStore, clock Clock) *Aggregator {
	return &Aggregator{store: store, clock: clock}
}

// Overview is the all-time reduction across a sender's daily stats.
type Overview struct {
	Sent       int     `json:"sent"`
	Opened     int     `json:"opened"`
	Replied    int     `json:"replied"`
	Spam       int     `json:"spam"`
	Bounced    int     `json:"bounced"`
	OpenRate   float64 `json:"open_rate"`
	ReplyRate  float64 `json:"reply_rate"`
	SpamRate   float64 `json:"spam_rate"`
	BounceRate float64 `json:"bounce_rate"`
	Reputation float64 `json:"reputation"`
}

// RecordEvent upserts today's stat row for the sender, incrementing the
// matching counter by count and recomputing rates and reputation.
// Count-additive: two calls with count=1 equal one call with count=2.
func (a *Aggregator) RecordEvent(senderID uint, kind EventKind, count int) error {
	if count <= 0 {
		return nil
	}

	date := dateOf(a.clock.Now())
	stat, err := a.store.StatFor(senderID, date)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if stat == nil {
		stat = &models.WarmupStat{SenderID: senderID, Date: date}
	}

	switch kind {
	case EventSent:
		stat.Sent += count
	case EventOpened:
		stat.Opened += count
	case EventReplied:
		stat.Replied += count
	case EventSpam:
		stat.Spam += count
	case EventBounced:
		stat.Bounced += count
	default:
		return fmt.Errorf("unknown event kind %q", kind)
	}

	recompute(stat)
	return a.store.SaveStat(stat)
}

// OverallStats sums counters across all days and averages the rate and
// reputation columns. A sender with no history gets an all-zero overview.
func (a *Aggregator) OverallStats(senderID uint) (*Overview, error) {
	stats, err := a.store.StatsFor(senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	overview := &Overview{}
	if len(stats) == 0 {
		return overview, nil
	}

	for _, s := range stats {
		overview.Sent += s.Sent
		overview.Opened += s.Opened
		overview.Replied += s.Replied
		overview.Spam += s.Spam
		overview.Bounced += s.Bounced
		overview.OpenRate += s.OpenRate
		overview.ReplyRate += s.ReplyRate
		overview.SpamRate += s.SpamRate
		overview.BounceRate += s.BounceRate
		overview.Reputation += s.Reputation
	}

	n := float64(len(stats))
	overview.OpenRate /= n
	overview.ReplyRate /= n
	overview.SpamRate /= n
	overview.BounceRate /= n
	overview.Reputation /= n
	return overview, nil
}

func recompute(stat *models.WarmupStat) {
	// Floor sent to 1 so rates never divide by zero.
	sent := stat.Sent
	if sent < 1 {
		sent = 1
	}

	stat.OpenRate = float64(stat.Opened) / float64(sent) * 100
	stat.ReplyRate = float64(stat.Replied) / float64(sent) * 100
	stat.SpamRate = float64(stat.Spam) / float64(sent) * 100
	stat.BounceRate = float64(stat.Bounced) / float64(sent) * 100

	score := 100 -
		2*stat.SpamRate -
		1.5*stat.BounceRate +
		0.5*stat.OpenRate +
		1.5*stat.ReplyRate
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	stat.Reputation = score
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
