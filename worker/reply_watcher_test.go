package worker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTextBodyPlainMessage(t *testing.T) {
	raw := "Subject: Re: Quick check-in\r\n" +
		"From: partner@example.com\r\n" +
		"To: sender@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Sounds good, talk soon!\r\n"

	assert.Equal(t, "Sounds good, talk soon!", parseTextBody(strings.NewReader(raw)))
}

func TestParseTextBodyPrefersPlainOverHTML(t *testing.T) {
	raw := "Subject: Re: Quick check-in\r\n" +
		"From: partner@example.com\r\n" +
		"To: sender@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=frontier\r\n" +
		"\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"Got it, thanks!\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>Got it, thanks!</p>\r\n" +
		"--frontier--\r\n"

	assert.Equal(t, "Got it, thanks!", parseTextBody(strings.NewReader(raw)))
}

func TestParseTextBodyFallsBackToHTML(t *testing.T) {
	raw := "Subject: Re: Quick check-in\r\n" +
		"From: partner@example.com\r\n" +
		"To: sender@example.com\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>Got it, thanks!</p>\r\n"

	assert.Equal(t, "<p>Got it, thanks!</p>", parseTextBody(strings.NewReader(raw)))
}

func TestParseTextBodyGarbageInput(t *testing.T) {
	assert.Empty(t, parseTextBody(strings.NewReader("\x00not a message")))
}
