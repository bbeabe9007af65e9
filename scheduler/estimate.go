package scheduler

// Estimate is a rough completion time for a campaign run.
type Estimate struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// EstimateCompletion derives a completion estimate from the total send
// time (recipients × delay) divided by the effective daily throughput:
// the daily limit, or fewer when the window cannot fit that many sends.
func EstimateCompletion(recipientCount int, cfg Rotation) (Estimate, error) {
	if err := checkConfig(cfg); err != nil {
		return Estimate{}, err
	}
	if recipientCount <= 0 {
		return Estimate{}, nil
	}

	perDay := cfg.DailyLimit
	if cfg.DelayMinutes > 0 && cfg.WindowEnd.After(cfg.WindowStart) {
		windowMinutes := int(cfg.WindowEnd.Sub(cfg.WindowStart).Minutes())
		if fit := windowMinutes / cfg.DelayMinutes; fit < perDay {
			perDay = fit
		}
	}
	if perDay < 1 {
		perDay = 1
	}

	days := recipientCount / perDay
	leftoverMinutes := (recipientCount % perDay) * cfg.DelayMinutes
	return Estimate{
		Days:    days,
		Hours:   leftoverMinutes / 60,
		Minutes: leftoverMinutes % 60,
	}, nil
}
