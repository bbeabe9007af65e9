package worker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"gorm.io/gorm"

	"mailramp/models"
	"mailramp/utils"
	"mailramp/warmup"
)

// ReplyWatcher is the genuine inbound-observation feed: it polls the
// IMAP inbox of every warmup-enabled mailbox for replies to probe
// messages and feeds them through the tracker. When a reply is observed
// here before the simulator fires, the tracker's idempotency keeps the
// counters honest.
type ReplyWatcher struct {
	db      *gorm.DB
	tracker *warmup.Tracker
	logger  *log.Logger
	period  time.Duration
}

func NewReplyWatcher(db *gorm.DB, tracker *warmup.Tracker, logger *log.Logger) *ReplyWatcher {
	return &ReplyWatcher{
		db:      db,
		tracker: tracker,
		logger:  logger,
		period:  5 * time.Minute,
	}
}

func (rw *ReplyWatcher) Start(ctx context.Context) {
	rw.logger.Println("Reply watcher started")
	ticker := time.NewTicker(rw.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.logger.Println("Reply watcher shutting down...")
			return
		case <-ticker.C:
			rw.pollAll()
		}
	}
}

func (rw *ReplyWatcher) pollAll() {
	var senders []models.Sender
	if err := rw.db.
		Where("warmup_enabled = ? AND imap_verified = ?", true, true).
		Find(&senders).Error; err != nil {
		rw.logger.Printf("Error fetching senders for reply polling: %v", err)
		return
	}

	for i := range senders {
		if err := rw.pollInbox(&senders[i]); err != nil {
			rw.logger.Printf("Reply poll failed for sender %d: %v", senders[i].ID, err)
		}
	}
}

// pollInbox scans one mailbox's unseen messages for probe replies.
func (rw *ReplyWatcher) pollInbox(sender *models.Sender) error {
	password, err := utils.Decrypt(sender.IMAPPassword)
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
	if _, err := c.Select(sender.IMAPMailbox, true); err != nil {
		return fmt.Errorf("failed to select %s: %v", sender.IMAPMailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return fmt.Errorf("IMAP search failed: %v", err)
	}
	if len(ids) == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}
	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		var body string
		if literal := msg.GetBody(section); literal != nil {
			body = parseTextBody(literal)
		}
		rw.matchReply(sender.ID, msg.Envelope.Subject, body)
	}
	return <-done
}

// parseTextBody extracts the text/plain part of a raw message, falling
// back to the HTML part when no plain one exists.
func parseTextBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	var html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return ""
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		b, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(contentType, "text/plain"):
			return strings.TrimSpace(string(b))
		case strings.Contains(contentType, "text/html"):
			html = strings.TrimSpace(string(b))
		}
	}
	return html
}

// matchReply correlates a "Re: <probe subject>" to the newest unreplied
// probe this mailbox was the partner for.
func (rw *ReplyWatcher) matchReply(partnerID uint, subject, body string) {
	original := strings.TrimSpace(strings.TrimPrefix(subject, "Re:"))
	if original == subject || original == "" {
		return // not a reply
	}

	var probe models.WarmupEmail
	err := rw.db.
		Where("partner_id = ? AND subject = ? AND replied_at IS NULL", partnerID, original).
		Order("sent_at DESC").
		First(&probe).Error
	if err != nil {
		return // no matching probe; an organic reply
	}

	if err := rw.tracker.MarkReplied(probe.TrackingID, body); err != nil {
		rw.logger.Printf("Failed to record observed reply for %s: %v", probe.TrackingID, err)
	}
}
