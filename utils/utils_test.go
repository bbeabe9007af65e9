package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "3 days", FormatDuration(3*24*time.Hour+2*time.Hour))
	assert.Equal(t, "5.5 hours", FormatDuration(5*time.Hour+30*time.Minute))
	assert.Equal(t, "20.0 minutes", FormatDuration(20*time.Minute))
	assert.Equal(t, "45.0 seconds", FormatDuration(45*time.Second))
	assert.Equal(t, "0.0 seconds", FormatDuration(0))
}

func TestGenerateRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:7:12:/api/v1/senders/12/test", GenerateRateLimitKey(7, "12", "/api/v1/senders/12/test"))
}
