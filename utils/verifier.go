package utils

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/emersion/go-imap/client"
	"github.com/likexian/whois"
	"gopkg.in/gomail.v2"

	"mailramp/models"
)

// AddressCheck is the outcome of verifying a single email address.
type AddressCheck struct {
	Email   string `json:"email"`
	Status  string `json:"status"` // valid, invalid, disposable
	Details string `json:"details,omitempty"`
	WHOIS   string `json:"whois,omitempty"`
}

var disposableMarkers = []string{
	"mailinator", "temp", "fake", "example",
	"test", "demo", "trash", "throwaway",
}

// VerifyEmailAddress checks syntax, MX records and disposable-domain
// markers for an address, attaching WHOIS info when available.
func VerifyEmailAddress(email string) *AddressCheck {
	email = strings.ToLower(strings.TrimSpace(email))
	result := &AddressCheck{Email: email, Status: "valid"}

	if err := checkmail.ValidateFormat(email); err != nil {
		result.Status = "invalid"
		result.Details = "Invalid email format: " + err.Error()
		return result
	}

	parts := strings.Split(email, "@")
	domain := parts[1]

	for _, marker := range disposableMarkers {
		if strings.Contains(domain, marker) {
			result.Status = "disposable"
			result.Details = "Disposable email domain"
			return result
		}
	}

	if err := checkmail.ValidateHost(domain); err != nil {
		result.Status = "invalid"
		result.Details = "Domain validation failed: " + err.Error()
		return result
	}

	if whoisInfo, err := whois.Whois(domain); err == nil {
		result.WHOIS = whoisInfo
	}
	return result
}

// VerifySMTP dials and authenticates the sender's SMTP endpoint.
func VerifySMTP(sender *models.Sender) error {
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

	closer, err := dialer.Dial()
	if err != nil {
		return fmt.Errorf("SMTP connection failed: %v", err)
	}
	return closer.Close()
}

// VerifyIMAP dials and authenticates the sender's IMAP endpoint.
func VerifyIMAP(sender *models.Sender) error {
	if sender.IMAPHost == "" {
		return fmt.Errorf("no IMAP host configured")
	}
	password, err := Decrypt(sender.IMAPPassword)
	if err != nil {
		return fmt.Errorf("failed to decrypt IMAP password: %v", err)
	}

	addr := fmt.Sprintf("%s:%d", sender.IMAPHost, sender.IMAPPort)
	var c *client.Client
	if sender.IMAPEncryption == "SSL" {
		c, err = client.DialTLS(addr, &tls.Config{ServerName: sender.IMAPHost})
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("IMAP connection failed: %v", err)
	}
	defer c.Logout()

	if err := c.Login(sender.IMAPUsername, password); err != nil {
		return fmt.Errorf("IMAP login failed: %v", err)
	}
	return nil
}
