package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mailramp/models"
	"mailramp/utils"
	"mailramp/warmup"
)

// RunnerConfig tunes the cycle runner cadence.
type RunnerConfig struct {
	MinTick      time.Duration // lower bound between two probes of one mailbox
	MaxTick      time.Duration // upper bound
	PollInterval time.Duration // reconciler wakeup
	BaseURL      string        // for tracking pixel URLs
}

// CycleRunner drives the warmup for every enabled mailbox. A single
// reconciler loop picks up senders whose persisted next_warmup_at is
// due, so the ramp survives process restarts; each due mailbox is
// processed by at most one goroutine at a time, dispatching at most one
// probe per tick.
type CycleRunner struct {
	db        *gorm.DB
	engine    *warmup.Engine
	tracker   *warmup.Tracker
	simulator *warmup.Simulator
	transport utils.Transport
	content   warmup.ContentProvider
	clock     warmup.Clock
	rng       warmup.RNG
	cfg       RunnerConfig
	logger    *log.Logger

	mu     sync.Mutex
	active map[uint]bool

	lastPass time.Time // previous reconciler pass, for day-rollover detection
}

func NewCycleRunner(
	db *gorm.DB,
	engine *warmup.Engine,
	tracker *warmup.Tracker,
	simulator *warmup.Simulator,
	transport utils.Transport,
	content warmup.ContentProvider,
	clock warmup.Clock,
	rng warmup.RNG,
	cfg RunnerConfig,
	logger *log.Logger,
) *CycleRunner {
	return &CycleRunner{
		db:        db,
		engine:    engine,
		tracker:   tracker,
		simulator: simulator,
		transport: transport,
		content:   content,
		clock:     clock,
		rng:       rng,
		cfg:       cfg,
		logger:    logger,
		active:    make(map[uint]bool),
	}
}

func (r *CycleRunner) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	r.logger.Println("Cycle runner started")

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Cycle runner shutting down...")
			r.simulator.Stop()
			return
		case <-ticker.C:
			r.processDue()
		}
	}
}

func (r *CycleRunner) processDue() {
	now := r.clock.Now()
	r.rollDailyCounters(now)

	var due []models.Sender
	if err := r.db.
		Where("warmup_enabled = ? AND smtp_verified = ?", true, true).
		Where("next_warmup_at IS NULL OR next_warmup_at <= ?", now).
		Find(&due).Error; err != nil {
		r.logger.Printf("Error fetching due warmups: %v", err)
		return
	}

	for i := range due {
		sender := due[i]
		if !r.acquire(sender.ID) {
			continue // a tick for this mailbox is already in flight
		}
		go func() {
			defer r.release(sender.ID)
			r.tick(sender)
		}()
	}
}

// rollDailyCounters zeroes every sender's sent_today counter on the
// first reconciler pass after the calendar day turns. The per-day truth
// lives in the warmup day records; this counter only reports today's
// activity on the sender row.
func (r *CycleRunner) rollDailyCounters(now time.Time) {
	if r.lastPass.IsZero() {
		r.lastPass = now
		return
	}
	if !isNewDay(r.lastPass, now) {
		return
	}
	r.lastPass = now

	if err := r.db.Model(&models.Sender{}).
		Where("sent_today > 0").
		Update("sent_today", 0).Error; err != nil {
		r.logger.Printf("Error resetting daily send counters: %v", err)
	}
}

// tick performs one warmup cycle for one mailbox: check the remaining
// quota, dispatch at most one probe, and persist the next run time.
func (r *CycleRunner) tick(sender models.Sender) {
	remaining, err := r.engine.RemainingToday(sender.ID)
	if err != nil {
		r.logger.Printf("Error computing remaining for sender %d: %v", sender.ID, err)
		r.updateSenderError(sender.ID, err.Error())
		return
	}

	if remaining <= 0 {
		r.finishDay(sender)
		return
	}

	if r.dispatchProbe(&sender) {
		r.scheduleNext(sender.ID, r.clock.Now().Add(r.nextInterval()))
	} else {
		// Treated as not having happened; the slot is retried next tick.
		r.scheduleNext(sender.ID, r.clock.Now().Add(r.cfg.PollInterval))
	}
}

// dispatchProbe sends exactly one probe to a rotation partner (or to the
// mailbox itself when no partner exists). Reports whether the send
// succeeded; a transport failure mutates no progression or stats state.
func (r *CycleRunner) dispatchProbe(sender *models.Sender) bool {
	partner := r.pickPartner(sender)

	subject, body, err := r.content.GenerateContent(sender.FromName)
	if err != nil {
		r.logger.Printf("Content generation failed for sender %d, using fallback: %v", sender.ID, err)
		subject = "Checking in"
		body = "Hi,\n\nJust checking in. Hope all is well!\n\n" + sender.FromName
	}

	trackingID := utils.NewTrackingID()
	htmlBody := utils.InjectTrackingPixel(body, r.cfg.BaseURL, trackingID)

	if err := r.transport.Send(sender, partner.FromEmail, subject, htmlBody); err != nil {
		logrus.WithFields(logrus.Fields{
			"sender_id":  sender.ID,
			"partner_id": partner.ID,
			"error":      err.Error(),
		}).Warn("warmup probe dispatch failed")
		sentry.CaptureException(err)
		r.updateSenderError(sender.ID, err.Error())
		return false
	}

	day, err := r.engine.CurrentDay(sender.ID)
	if err != nil {
		r.logger.Printf("Error resolving current day for sender %d: %v", sender.ID, err)
		return false
	}

	msg := &models.WarmupEmail{
		SenderID:   sender.ID,
		PartnerID:  partner.ID,
		TrackingID: trackingID,
		Day:        day,
		Subject:    subject,
	}
	if err := r.tracker.Record(msg); err != nil {
		r.logger.Printf("Error recording probe for sender %d: %v", sender.ID, err)
		return false
	}
	if err := r.engine.RecordSend(sender.ID); err != nil {
		r.logger.Printf("Error recording send for sender %d: %v", sender.ID, err)
	}

	if err := r.db.Model(&models.Sender{}).
		Where("id = ?", sender.ID).
		Updates(map[string]interface{}{
			"sent_today": gorm.Expr("sent_today + ?", 1),
			"total_sent": gorm.Expr("total_sent + ?", 1),
		}).Error; err != nil {
		r.logger.Printf("Error updating counters for sender %d: %v", sender.ID, err)
	}

	r.simulator.Schedule(sender.ID, trackingID, subject)
	return true
}

// finishDay handles a mailbox whose quota is met: either the whole ramp
// is done, or the runner parks the mailbox until the next calendar day.
func (r *CycleRunner) finishDay(sender models.Sender) {
	day, err := r.engine.CurrentDay(sender.ID)
	if err != nil {
		r.logger.Printf("Error resolving current day for sender %d: %v", sender.ID, err)
		return
	}

	if day >= r.engine.Days() {
		now := r.clock.Now()
		if err := r.db.Model(&models.Sender{}).
			Where("id = ?", sender.ID).
			Updates(map[string]interface{}{
				"warmup_enabled": false,
				"warmup_done_at": now,
				"next_warmup_at": nil,
			}).Error; err != nil {
			r.logger.Printf("Error completing warmup for sender %d: %v", sender.ID, err)
			return
		}
		r.simulator.Cancel(sender.ID)
		r.logger.Printf("Warmup completed for sender %d after %d days", sender.ID, day)
		return
	}

	r.scheduleNext(sender.ID, nextMidnight(r.clock.Now()))
}

func (r *CycleRunner) pickPartner(sender *models.Sender) *models.Sender {
	var partners []models.Sender
	if err := r.db.
		Where("warmup_enabled = ? AND smtp_verified = ? AND id != ?", true, true, sender.ID).
		Find(&partners).Error; err != nil || len(partners) == 0 {
		return sender // self-warmup when no partner exists
	}
	return &partners[r.rng.Intn(len(partners))]
}

func (r *CycleRunner) scheduleNext(senderID uint, at time.Time) {
	if err := r.db.Model(&models.Sender{}).
		Where("id = ?", senderID).
		Update("next_warmup_at", at).Error; err != nil {
		r.logger.Printf("Error scheduling next tick for sender %d: %v", senderID, err)
	}
}

func (r *CycleRunner) nextInterval() time.Duration {
	return jitterInterval(r.rng, r.cfg.MinTick, r.cfg.MaxTick)
}

func (r *CycleRunner) updateSenderError(senderID uint, errorMsg string) {
	r.db.Model(&models.Sender{}).Where("id = ?", senderID).
		Updates(map[string]interface{}{
			"last_error":     errorMsg,
			"last_tested_at": r.clock.Now(),
		})
}

func (r *CycleRunner) acquire(senderID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[senderID] {
		return false
	}
	r.active[senderID] = true
	return true
}

func (r *CycleRunner) release(senderID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, senderID)
}

func jitterInterval(rng warmup.RNG, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Float64()*float64(max-min))
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

func isNewDay(last, now time.Time) bool {
	ly, lm, ld := last.Date()
	ny, nm, nd := now.Date()
	return ly != ny || lm != nm || ld != nd
}
