package warmup

import "fmt"

// ContentProvider produces probe subjects/bodies and reply text. The
// production wiring may plug in a generative service; the scheduler's
// correctness never depends on one being available.
type ContentProvider interface {
	GenerateContent(fromName string) (subject, body string, err error)
	GenerateReply(subject string) (string, error)
}

// StaticContent is the built-in fallback phrase set.
type StaticContent struct {
	rng RNG
}

func NewStaticContent(rng RNG) *StaticContent {
	return &StaticContent{rng: rng}
}

var warmupSubjects = []string{
	"Quick question about your recent post",
	"Following up on our last conversation",
	"Checking in to see how you're doing",
	"Thought you might find this interesting",
	"Let's reconnect soon",
	"An idea I wanted to share with you",
	"Regarding your recent project",
}

var warmupBodies = []string{
	"Hi there,\n\nI wanted to follow up on our previous conversation. Let me know if you have any questions!\n\nBest regards,\n%s",
	"Hello,\n\nI came across this and thought you might find it valuable. What do you think?\n\nRegards,\n%s",
	"Hi,\n\nJust checking in to see if you had any thoughts on this topic?\n\nThanks,\n%s",
	"Greetings,\n\nI wanted to share this with you. Let me know your thoughts when you get a chance.\n\nBest,\n%s",
	"Hello,\n\nHope this message finds you well. I wanted to touch base about...\n\nWarm regards,\n%s",
}

var warmupReplies = []string{
	"Thanks for reaching out! This sounds interesting, let me take a closer look.",
	"Appreciate the note. I'll get back to you with more details soon.",
	"Good to hear from you! Let's find some time to talk this week.",
	"Thanks for the follow-up, this is helpful.",
	"Got it, thanks! I'll review and circle back.",
}

func (c *StaticContent) GenerateContent(fromName string) (string, string, error) {
	subject := warmupSubjects[c.rng.Intn(len(warmupSubjects))]
	body := fmt.Sprintf(warmupBodies[c.rng.Intn(len(warmupBodies))], fromName)
	return subject, body, nil
}

func (c *StaticContent) GenerateReply(string) (string, error) {
	return warmupReplies[c.rng.Intn(len(warmupReplies))], nil
}
