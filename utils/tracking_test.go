package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackingTokenDeterministic(t *testing.T) {
	a := TrackingToken("abc-123")
	b := TrackingToken("abc-123")
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)

	assert.NotEqual(t, a, TrackingToken("abc-124"))
}

func TestNewTrackingIDUnique(t *testing.T) {
	assert.NotEqual(t, NewTrackingID(), NewTrackingID())
}

func TestTrackingPixelURL(t *testing.T) {
	url := TrackingPixelURL("https://mail.example.com", "id-1")
	assert.True(t, strings.HasPrefix(url, "https://mail.example.com/track/open/id-1/"))
	assert.True(t, strings.HasSuffix(url, TrackingToken("id-1")))
}

func TestInjectTrackingPixelAppends(t *testing.T) {
	body := "<p>Hello</p>"
	out := InjectTrackingPixel(body, "https://mail.example.com", "id-1")

	assert.True(t, strings.HasPrefix(out, body))
	assert.Contains(t, out, `<img src="https://mail.example.com/track/open/id-1/`)
	assert.Contains(t, out, `width="1" height="1"`)
}
