package warmup

import (
	"log"
	"sync"
	"time"
)

// SimulatorConfig tunes the synthetic engagement decisions made for
// probes no real observation arrives for.
type SimulatorConfig struct {
	OpenProbability  float64
	ReplyProbability float64 // conditional on open
	MinDelay         time.Duration
	MaxDelay         time.Duration
}

// Simulator stands in for the inbound-observation feed: after a
// randomized delay from send it decides whether the partner mailbox
// "opened" and "replied to" a probe, and feeds those transitions through
// the tracker exactly like a genuine observation would.
type Simulator struct {
	tracker *Tracker
	content ContentProvider
	rng     RNG
	cfg     SimulatorConfig
	logger  *log.Logger

	mu      sync.Mutex
	pending map[uint]map[string]*time.Timer
	stopped bool
}

func NewSimulator(tracker *Tracker, content ContentProvider, rng RNG, cfg SimulatorConfig, logger *log.Logger) *Simulator {
	return &Simulator{
		tracker: tracker,
		content: content,
		rng:     rng,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[uint]map[string]*time.Timer),
	}
}

// Schedule queues an engagement decision for a just-sent probe. The
// timer is tracked per sender so disabling a mailbox cancels it.
func (s *Simulator) Schedule(senderID uint, trackingID, subject string) {
	delay := s.cfg.MinDelay
	if spread := s.cfg.MaxDelay - s.cfg.MinDelay; spread > 0 {
		delay += time.Duration(s.rng.Float64() * float64(spread))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.pending[senderID] == nil {
		s.pending[senderID] = make(map[string]*time.Timer)
	}
	s.pending[senderID][trackingID] = time.AfterFunc(delay, func() {
		s.fire(senderID, trackingID, subject)
	})
}

// fire runs a timer's engagement decision. Timer.Stop cannot stop a
// callback that already fired, so a decision cancelled in that window
// must be dropped here: only a decision still registered may engage.
func (s *Simulator) fire(senderID uint, trackingID, subject string) {
	if !s.claim(senderID, trackingID) {
		return
	}
	s.Engage(senderID, trackingID, subject)
}

// Engage makes the open/reply decision for one probe. Exposed so a
// scripted RNG can drive it directly in tests.
func (s *Simulator) Engage(senderID uint, trackingID, subject string) {
	if s.rng.Float64() >= s.cfg.OpenProbability {
		return // stays sent
	}
	if err := s.tracker.MarkOpened(trackingID); err != nil {
		s.logger.Printf("Simulated open failed for %s: %v", trackingID, err)
		return
	}

	if s.rng.Float64() >= s.cfg.ReplyProbability {
		return
	}
	reply, err := s.content.GenerateReply(subject)
	if err != nil {
		// Content generation must never block engagement; fall back.
		reply = "Thanks, got your note!"
	}
	if err := s.tracker.MarkReplied(trackingID, reply); err != nil {
		s.logger.Printf("Simulated reply failed for %s: %v", trackingID, err)
	}
}

// Cancel drops every pending decision for a sender. Used when a mailbox
// is disabled or deleted mid-flight so its stats rows stop moving.
func (s *Simulator) Cancel(senderID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, timer := range s.pending[senderID] {
		timer.Stop()
	}
	delete(s.pending, senderID)
}

// Stop cancels all pending decisions and refuses new ones.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for senderID, timers := range s.pending {
		for _, timer := range timers {
			timer.Stop()
		}
		delete(s.pending, senderID)
	}
}

// PendingCount reports queued decisions for a sender.
func (s *Simulator) PendingCount(senderID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[senderID])
}

// claim removes a pending decision and reports whether it was still
// registered. Returns false when the sender was cancelled or stopped
// after the timer fired.
func (s *Simulator) claim(senderID uint, trackingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timers, ok := s.pending[senderID]
	if !ok {
		return false
	}
	if _, ok := timers[trackingID]; !ok {
		return false
	}
	delete(timers, trackingID)
	if len(timers) == 0 {
		delete(s.pending, senderID)
	}
	return true
}
