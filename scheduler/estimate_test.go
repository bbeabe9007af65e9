package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estimateCfg() Rotation {
	return Rotation{
		DefaultSenderID: 1,
		DelayMinutes:    5,
		DailyLimit:      200,
		WindowStart:     windowStart,
		WindowEnd:       windowStart.Add(8 * time.Hour), // 09:00-17:00
	}
}

func TestEstimateWindowCapsThroughput(t *testing.T) {
	// 480 window minutes / 5 minute delay = 96 sends per day, under the
	// 200 daily limit
	est, err := EstimateCompletion(96, estimateCfg())
	require.NoError(t, err)
	assert.Equal(t, Estimate{Days: 1}, est)

	est, err = EstimateCompletion(100, estimateCfg())
	require.NoError(t, err)
	assert.Equal(t, 1, est.Days)
	// 4 leftover sends at 5 minutes each
	assert.Equal(t, 0, est.Hours)
	assert.Equal(t, 20, est.Minutes)
}

func TestEstimateDailyLimitCapsThroughput(t *testing.T) {
	cfg := estimateCfg()
	cfg.DailyLimit = 50

	est, err := EstimateCompletion(150, cfg)
	require.NoError(t, err)
	assert.Equal(t, Estimate{Days: 3}, est)
}

func TestEstimateLeftoverSpillsIntoHours(t *testing.T) {
	cfg := estimateCfg()
	cfg.DelayMinutes = 30
	// 480/30 = 16 per day

	est, err := EstimateCompletion(19, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, est.Days)
	assert.Equal(t, 1, est.Hours)
	assert.Equal(t, 30, est.Minutes)
}

func TestEstimateZeroRecipients(t *testing.T) {
	est, err := EstimateCompletion(0, estimateCfg())
	require.NoError(t, err)
	assert.Equal(t, Estimate{}, est)
}

func TestEstimateZeroDelay(t *testing.T) {
	cfg := estimateCfg()
	cfg.DelayMinutes = 0

	// No spacing: throughput is the daily limit alone
	est, err := EstimateCompletion(450, cfg)
	require.NoError(t, err)
	assert.Equal(t, Estimate{Days: 2}, est)
}

func TestEstimateRejectsBadConfig(t *testing.T) {
	cfg := estimateCfg()
	cfg.DelayMinutes = -5

	_, err := EstimateCompletion(10, cfg)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}
