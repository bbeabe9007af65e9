package warmup

import (
	"fmt"
	"log"
	"sync"

	"mailramp/models"
)

// Config is the ramp curve: volume grows by DailyIncrease per day until it
// reaches MaxDailyEmails, over a WarmupDays-long schedule.
type Config struct {
	DailyIncrease  int
	MaxDailyEmails int
	WarmupDays     int
}

// Engine computes target volumes and advances a sender's warmup day by
// day. All progression state lives in the ProgressStore; the engine holds
// no per-sender state of its own. Every operation for one sender runs
// under that sender's lock, so an HTTP status poll and a runner tick
// never interleave their read-modify-write cycles.
type Engine struct {
	store  ProgressStore
	clock  Clock
	cfg    Config
	logger *log.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewEngine(store ProgressStore, clock Clock, cfg Config, logger *log.Logger) *Engine {
	return &Engine{
		store:  store,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// Days returns the length of the warmup schedule.
func (e *Engine) Days() int { return e.cfg.WarmupDays }

// TargetForDay returns min(dailyIncrease×day, maxDailyEmails). Days past
// the end of the schedule plateau at the maximum.
func (e *Engine) TargetForDay(day int) int {
	if day < 1 {
		day = 1
	}
	if day > e.cfg.WarmupDays {
		return e.cfg.MaxDailyEmails
	}
	target := e.cfg.DailyIncrease * day
	if target > e.cfg.MaxDailyEmails {
		return e.cfg.MaxDailyEmails
	}
	return target
}

// lockFor returns the mutex serializing progression access for one
// sender.
func (e *Engine) lockFor(senderID uint) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[senderID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[senderID] = l
	}
	return l
}

// EnsureProgress creates the full set of day records for a sender on
// first access. Safe to call repeatedly; existing records are never
// duplicated.
func (e *Engine) EnsureProgress(senderID uint) ([]models.WarmupDay, error) {
	l := e.lockFor(senderID)
	l.Lock()
	defer l.Unlock()
	return e.ensureProgress(senderID)
}

func (e *Engine) ensureProgress(senderID uint) ([]models.WarmupDay, error) {
	days, err := e.store.DaysFor(senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load warmup days: %w", err)
	}
	if len(days) > 0 {
		return days, nil
	}

	records := make([]models.WarmupDay, 0, e.cfg.WarmupDays)
	for day := 1; day <= e.cfg.WarmupDays; day++ {
		records = append(records, models.WarmupDay{
			SenderID:     senderID,
			Day:          day,
			TargetVolume: e.TargetForDay(day),
		})
	}
	if err := e.store.CreateDays(records); err != nil {
		return nil, fmt.Errorf("failed to create warmup days: %w", err)
	}
	e.logger.Printf("Initialized %d warmup days for sender %d", len(records), senderID)

	return e.store.DaysFor(senderID)
}

// CurrentDay returns the 1-based warmup day for a sender, anchored at the
// creation time of its first day record and clamped to the schedule.
func (e *Engine) CurrentDay(senderID uint) (int, error) {
	l := e.lockFor(senderID)
	l.Lock()
	defer l.Unlock()
	return e.currentDay(senderID)
}

func (e *Engine) currentDay(senderID uint) (int, error) {
	days, err := e.ensureProgress(senderID)
	if err != nil {
		return 0, err
	}

	elapsed := e.clock.Now().Sub(days[0].CreatedAt)
	day := int(elapsed.Hours()/24) + 1
	if day < 1 {
		day = 1
	}
	if day > e.cfg.WarmupDays {
		day = e.cfg.WarmupDays
	}
	return day, nil
}

// RemainingToday returns how many probes the sender may still dispatch on
// its current warmup day. Skipped idle days are closed out without
// back-filling their volume; once a day's quota is met its record is
// marked completed and stays that way until an explicit reset.
func (e *Engine) RemainingToday(senderID uint) (int, error) {
	l := e.lockFor(senderID)
	l.Lock()
	defer l.Unlock()

	days, err := e.ensureProgress(senderID)
	if err != nil {
		return 0, err
	}
	current, err := e.currentDay(senderID)
	if err != nil {
		return 0, err
	}

	var today *models.WarmupDay
	for i := range days {
		switch {
		case days[i].Day < current:
			// Missed volume is not compensated; close the day as-is.
			if !days[i].Completed {
				days[i].Completed = true
				if err := e.store.SaveDay(&days[i]); err != nil {
					return 0, fmt.Errorf("failed to close skipped day %d: %w", days[i].Day, err)
				}
			}
		case days[i].Day == current:
			today = &days[i]
		}
	}
	if today == nil {
		return 0, fmt.Errorf("no day record for sender %d day %d", senderID, current)
	}

	remaining := today.TargetVolume - today.SentToday
	if remaining <= 0 {
		if !today.Completed {
			today.Completed = true
			if err := e.store.SaveDay(today); err != nil {
				return 0, fmt.Errorf("failed to complete day %d: %w", today.Day, err)
			}
		}
		return 0, nil
	}
	return remaining, nil
}

// RecordSend increments today's sent counter after a successful dispatch
// and completes the day when the target is reached.
func (e *Engine) RecordSend(senderID uint) error {
	l := e.lockFor(senderID)
	l.Lock()
	defer l.Unlock()

	days, err := e.ensureProgress(senderID)
	if err != nil {
		return err
	}
	current, err := e.currentDay(senderID)
	if err != nil {
		return err
	}

	for i := range days {
		if days[i].Day != current {
			continue
		}
		days[i].SentToday++
		if days[i].SentToday >= days[i].TargetVolume {
			days[i].Completed = true
		}
		return e.store.SaveDay(&days[i])
	}
	return fmt.Errorf("no day record for sender %d day %d", senderID, current)
}

// ResetProgress clears completed flags and sent counters so a stalled
// ramp can be restarted by an operator. The only external mutation of
// progression state that is permitted.
func (e *Engine) ResetProgress(senderID uint) error {
	l := e.lockFor(senderID)
	l.Lock()
	defer l.Unlock()

	if err := e.store.ResetDays(senderID); err != nil {
		return fmt.Errorf("failed to reset warmup progress: %w", err)
	}
	e.logger.Printf("Warmup progress reset for sender %d", senderID)
	return nil
}
