package warmup

import (
	"fmt"

	"mailramp/models"
)

// Tracker owns the probe message lifecycle. Transitions only move
// forward (sent → opened → replied), spam is reachable from any state,
// and re-applying a state a message already holds never double counts.
type Tracker struct {
	store MessageStore
	stats *Aggregator
	clock Clock
}

func NewTracker(store MessageStore, stats *Aggregator, clock Clock) *Tracker {
	return &Tracker{store: store, stats: stats, clock: clock}
}

// Record persists a freshly dispatched probe and counts the send.
func (t *Tracker) Record(msg *models.WarmupEmail) error {
	msg.Status = models.StatusSent
	msg.SentAt = t.clock.Now()
	if err := t.store.CreateMessage(msg); err != nil {
		return fmt.Errorf("failed to record probe: %w", err)
	}
	return t.stats.RecordEvent(msg.SenderID, EventSent, 1)
}

// MarkOpened transitions a probe to opened. A no-op for messages already
// observed open; the opened timestamp is still recorded when a reply was
// observed before the open.
func (t *Tracker) MarkOpened(trackingID string) error {
	msg, err := t.store.MessageByTracking(trackingID)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("unknown tracking id %s", trackingID)
	}
	if msg.OpenedAt != nil {
		return nil
	}

	now := t.clock.Now()
	msg.OpenedAt = &now
	if msg.Status == models.StatusSent {
		msg.Status = models.StatusOpened
	}
	if err := t.store.SaveMessage(msg); err != nil {
		return err
	}
	return t.stats.RecordEvent(msg.SenderID, EventOpened, 1)
}

// MarkReplied transitions a probe to replied, storing the reply body.
func (t *Tracker) MarkReplied(trackingID, body string) error {
	msg, err := t.store.MessageByTracking(trackingID)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("unknown tracking id %s", trackingID)
	}
	if msg.RepliedAt != nil {
		return nil
	}

	now := t.clock.Now()
	msg.RepliedAt = &now
	msg.ReplyBody = body
	if msg.Status != models.StatusSpam {
		msg.Status = models.StatusReplied
	}
	if err := t.store.SaveMessage(msg); err != nil {
		return err
	}
	return t.stats.RecordEvent(msg.SenderID, EventReplied, 1)
}

// MarkSpam flags a probe as landed in spam. Allowed from any state; a
// late spam-folder move after a reply overwrites the status while the
// historical reply counters stand.
func (t *Tracker) MarkSpam(trackingID string) error {
	msg, err := t.store.MessageByTracking(trackingID)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("unknown tracking id %s", trackingID)
	}
	if msg.Status == models.StatusSpam {
		return nil
	}

	msg.Status = models.StatusSpam
	if err := t.store.SaveMessage(msg); err != nil {
		return err
	}
	return t.stats.RecordEvent(msg.SenderID, EventSpam, 1)
}

// MarkBounced counts a bounce against the sender. Bounces come from the
// transport boundary and have no probe state of their own.
func (t *Tracker) MarkBounced(senderID uint) error {
	return t.stats.RecordEvent(senderID, EventBounced, 1)
}
