package scheduler

import "time"

// Recipient is one destination to place in the plan. Walked in input
// order; the scheduler never reorders recipients.
type Recipient struct {
	ID    uint
	Email string
}

// Rotation is a campaign's account-rotation configuration.
type Rotation struct {
	Enabled          bool
	SenderIDs        []uint
	DefaultSenderID  uint
	EmailsPerAccount int
	DelayMinutes     int
	DailyLimit       int
	WindowStart      time.Time // first day's window opening
	WindowEnd        time.Time // same-day closing; informs estimates only
}

// PlanEntry assigns one recipient to one account at one time.
type PlanEntry struct {
	RecipientID   uint      `json:"recipient_id"`
	AccountID     uint      `json:"account_id"`
	SendAt        time.Time `json:"send_at"`
	OffsetMinutes int       `json:"offset_minutes"`
}

// BuildPlan produces the time-ordered dispatch plan for a recipient set.
//
// With rotation off (or an empty account list) every recipient goes to
// the default account, spaced DelayMinutes apart from the window start.
// With rotation on, accounts advance cyclically after EmailsPerAccount
// consecutive assignments, and the day rolls over (time base back to the
// next day's window start) after DailyLimit sends. SendAt values are
// non-decreasing in input order. Times past WindowEnd are not clipped;
// the caller decides how to treat overflow.
//
// Config problems return a *ConfigError and no partial plan.
func BuildPlan(recipients []Recipient, cfg Rotation) ([]PlanEntry, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	delay := time.Duration(cfg.DelayMinutes) * time.Minute
	entries := make([]PlanEntry, 0, len(recipients))

	if !cfg.Enabled || len(cfg.SenderIDs) == 0 {
		for i, r := range recipients {
			sendAt := cfg.WindowStart.Add(time.Duration(i) * delay)
			entries = append(entries, PlanEntry{
				RecipientID:   r.ID,
				AccountID:     cfg.DefaultSenderID,
				SendAt:        sendAt,
				OffsetMinutes: i * cfg.DelayMinutes,
			})
		}
		return entries, nil
	}

	var (
		accountIdx  int
		fromAccount int
		sentToday   int
		dayOffset   int
	)
	for _, r := range recipients {
		if fromAccount == cfg.EmailsPerAccount {
			accountIdx = (accountIdx + 1) % len(cfg.SenderIDs)
			fromAccount = 0
		}
		if sentToday == cfg.DailyLimit {
			dayOffset++
			sentToday = 0
		}

		dayBase := cfg.WindowStart.AddDate(0, 0, dayOffset)
		sendAt := dayBase.Add(time.Duration(sentToday) * delay)
		entries = append(entries, PlanEntry{
			RecipientID:   r.ID,
			AccountID:     cfg.SenderIDs[accountIdx],
			SendAt:        sendAt,
			OffsetMinutes: int(sendAt.Sub(cfg.WindowStart).Minutes()),
		})

		fromAccount++
		sentToday++
	}
	return entries, nil
}

func checkConfig(cfg Rotation) error {
	if cfg.DelayMinutes < 0 {
		return &ConfigError{Reason: "delay minutes cannot be negative"}
	}
	if cfg.Enabled && len(cfg.SenderIDs) > 0 {
		if cfg.EmailsPerAccount < 1 {
			return &ConfigError{Reason: "emails per account must be at least 1"}
		}
		if cfg.DailyLimit < 1 {
			return &ConfigError{Reason: "daily limit must be at least 1"}
		}
	} else if cfg.DefaultSenderID == 0 {
		return &ConfigError{Reason: "a default sender is required without rotation"}
	}
	return nil
}
