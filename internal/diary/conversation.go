package diary

import (
	"errors"
	"strings"
	"sync"

	"mealdiary/internal/api"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrAwaitingReply = errors.New("still waiting for the previous reply")

// Conversation is the insights chat as shown to the user. While a reply is
// outstanding the last message is an empty assistant placeholder.
type Conversation struct {
	mu   sync.Mutex
	msgs []api.Message

	// question and asked locate the outstanding user message in msgs
	question string
	asked    int
}

func NewConversation(history []api.Message) *Conversation {
	return &Conversation{msgs: append([]api.Message(nil), history...)}
}

// Ask appends text and the placeholder for its answer.
func (c *Conversation) Ask(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("message is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending() {
		return ErrAwaitingReply
	}
	c.question = text
	c.asked = len(c.msgs)
	c.msgs = append(c.msgs,
		api.Message{Role: RoleUser, Content: text},
		api.Message{Role: RoleAssistant})
	return nil
}

// Pending reports whether the placeholder is still unanswered.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending()
}

func (c *Conversation) pending() bool {
	n := len(c.msgs)
	return n > 0 && c.msgs[n-1].Role == RoleAssistant && c.msgs[n-1].Content == ""
}

// Answer fills the placeholder with reply. It reports false, leaving the
// conversation untouched, when nothing is pending or reply is empty.
func (c *Conversation) Answer(reply api.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending() || strings.TrimSpace(reply.Content) == "" {
		return false
	}
	if reply.Role == "" {
		reply.Role = RoleAssistant
	}
	c.msgs[len(c.msgs)-1] = reply
	return true
}

// Sync replaces the local view with the server history. While a question
// is outstanding the history only counts as an answer if it holds that
// question, at or after where it was asked, followed by an assistant
// reply. Otherwise the question and its placeholder are kept on top.
func (c *Conversation) Sync(history []api.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending() {
		c.msgs = append([]api.Message(nil), history...)
		return
	}

	at := -1
	for i := c.asked; i < len(history); i++ {
		if history[i].Role == RoleUser && strings.TrimSpace(history[i].Content) == c.question {
			at = i
			break
		}
	}
	if at >= 0 && at+1 < len(history) &&
		history[at+1].Role == RoleAssistant && history[at+1].Content != "" {
		c.msgs = append([]api.Message(nil), history...)
		return
	}

	msgs := append([]api.Message(nil), history...)
	if at < 0 {
		c.asked = len(msgs)
		msgs = append(msgs, api.Message{Role: RoleUser, Content: c.question})
	} else {
		c.asked = at
		msgs = msgs[:at+1]
	}
	c.msgs = append(msgs, api.Message{Role: RoleAssistant})
}

// Abandon drops the placeholder, e.g. when sending failed.
func (c *Conversation) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending() {
		c.msgs = c.msgs[:len(c.msgs)-1]
	}
}

func (c *Conversation) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.msgs...)
}
