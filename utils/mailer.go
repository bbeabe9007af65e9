package utils

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"mailramp/models"
)

// Transport dispatches one email from a sender account. Implementations
// must be safe to retry; failures surface as an error, never a panic.
type Transport interface {
	Send(sender *models.Sender, toEmail, subject, htmlBody string) error
}

// SMTPTransport sends through the sender's own SMTP configuration via
// gomail, with bounded retries on temporary failures.
type SMTPTransport struct {
	maxRetries int
}

func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{maxRetries: 3}
}

func (t *SMTPTransport) Send(sender *models.Sender, toEmail, subject, htmlBody string) error {
	password, err := Decrypt(sender.SMTPPassword)
	if err != nil {
		return fmt.Errorf("failed to decrypt SMTP password: %v", err)
	}

	dialer := gomail.NewDialer(
		sender.SMTPHost,
		sender.SMTPPort,
		sender.SMTPUsername,
		password,
	)
	dialer.TLSConfig = &tls.Config{ServerName: sender.SMTPHost}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", sender.FromName, sender.FromEmail))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	m.SetHeader("X-Mailer", "MailRamp/1.0")
	m.SetHeader("X-Priority", "3")
	m.SetHeader("Auto-Submitted", "auto-generated")

	var lastError error
	for attempt := 1; attempt <= t.maxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt*attempt) * time.Second
			time.Sleep(backoff)
		}

		if err := dialer.DialAndSend(m); err == nil {
			return nil
		} else {
			lastError = err
			if !isTemporaryError(err) {
				break // Permanent error, don't retry
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %v", t.maxRetries, lastError)
}

func isTemporaryError(err error) bool {
	if err == nil {
		return false
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}

	// SMTP reply codes that indicate a transient condition
	errStr := strings.ToLower(err.Error())
	tempErrors := []string{
		"try again",
		"temporary",
		"4.",
		"421",
		"450",
		"451",
		"452",
	}
	for _, tempErr := range tempErrors {
		if strings.Contains(errStr, tempErr) {
			return true
		}
	}
	return false
}
