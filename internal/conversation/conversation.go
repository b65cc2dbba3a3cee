// Package conversation maintains the active message sequence, the persona
// selection, and the saved-conversation list, and mediates prompt submission
// with the optimistic placeholder-then-replace pattern.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/notify"
	"github.com/kbhargava/promptline/internal/persona"
)

// Placeholder is the transient assistant message shown while a generate call
// is in flight. It always sits immediately after its paired user message
// until resolved or rolled back.
const Placeholder = "..."

// Session is the slice of the session controller the conversation needs.
type Session interface {
	Token() (string, bool)
	Epoch() uint64
	Expire(reason string)
	BeginGenerate()
	EndGenerate()
}

// Backend is the slice of the API client the conversation controller uses.
type Backend interface {
	GenerateText(ctx context.Context, token, prompt, persona string) (string, error)
	Conversations(ctx context.Context, token string) ([]api.Conversation, error)
}

// Controller holds the message and history state for one client instance.
// Messages are never reordered; the only in-place mutation is resolving a
// placeholder.
type Controller struct {
	backend  Backend
	session  Session
	notifier *notify.Notifier
	personas persona.Store

	mu            sync.Mutex
	messages      []api.Message
	conversations []api.Conversation
	selected      string
	personaID     string
	pendingID     string
}

// New creates a conversation controller with the default persona selected.
func New(backend Backend, sess Session, notifier *notify.Notifier, personas persona.Store) *Controller {
	return &Controller{
		backend:   backend,
		session:   sess,
		notifier:  notifier,
		personas:  personas,
		personaID: persona.DefaultID,
	}
}

// SendPrompt submits a prompt. It fails fast with no network call when the
// session is anonymous or the text is blank. Otherwise the user message and
// a placeholder are appended synchronously, and the placeholder is either
// resolved in place on success or removed on failure. A response that
// arrives after the session changed (logout raced the call) is discarded.
func (c *Controller) SendPrompt(ctx context.Context, text string) error {
	token, ok := c.session.Token()
	if !ok {
		c.notifier.Error("Please log in first.")
		return errors.New("not logged in")
	}

	prompt := strings.TrimSpace(text)
	if prompt == "" {
		c.notifier.Error("Please enter a prompt.")
		return errors.New("empty prompt")
	}

	reqID := uuid.NewString()
	epoch := c.session.Epoch()

	c.mu.Lock()
	c.messages = append(c.messages,
		api.Message{Role: api.RoleUser, Content: prompt},
		api.Message{Role: api.RoleAssistant, Content: Placeholder},
	)
	placeholderIdx := len(c.messages) - 1
	c.pendingID = reqID
	personaID := c.personaID
	c.mu.Unlock()

	c.session.BeginGenerate()
	reply, err := c.backend.GenerateText(ctx, token, prompt, personaID)
	c.session.EndGenerate()

	if c.stale(reqID, epoch) {
		return nil
	}

	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// Expire clears the message list along with the session.
			c.session.Expire("Session expired. Please login again.")
			return fmt.Errorf("generate: %w", err)
		}
		c.rollback(placeholderIdx)
		c.notifier.Error("Error generating response: " + err.Error())
		return fmt.Errorf("generate: %w", err)
	}

	c.mu.Lock()
	if placeholderIdx < len(c.messages) && c.messages[placeholderIdx].Content == Placeholder {
		c.messages[placeholderIdx] = api.Message{Role: api.RoleAssistant, Content: reply}
	}
	c.pendingID = ""
	c.mu.Unlock()
	return nil
}

// stale reports whether the response for reqID no longer targets the current
// session state and clears the pending marker if it does.
func (c *Controller) stale(reqID string, epoch uint64) bool {
	if c.session.Epoch() != epoch {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingID != reqID
}

// rollback removes the placeholder, restoring the list to the user message
// plus everything before it.
func (c *Controller) rollback(placeholderIdx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if placeholderIdx < len(c.messages) && c.messages[placeholderIdx].Content == Placeholder {
		c.messages = append(c.messages[:placeholderIdx], c.messages[placeholderIdx+1:]...)
	}
	c.pendingID = ""
}

// FetchHistory retrieves the saved conversation list. A 401 clears the
// session; any other failure leaves the existing list untouched.
func (c *Controller) FetchHistory(ctx context.Context) error {
	token, ok := c.session.Token()
	if !ok {
		return errors.New("not logged in")
	}

	convs, err := c.backend.Conversations(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.session.Expire("Session expired. Please login again.")
			return fmt.Errorf("history: %w", err)
		}
		c.notifier.Error("Could not fetch chat history.")
		return fmt.Errorf("history: %w", err)
	}

	c.mu.Lock()
	c.conversations = convs
	c.mu.Unlock()
	return nil
}

// LoadConversation replaces the active message sequence wholesale with the
// conversation's stored messages and records it as selected.
func (c *Controller) LoadConversation(conv api.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]api.Message(nil), conv.Messages...)
	c.selected = conv.ID
	c.pendingID = ""
}

// SetPersona selects the persona tag sent with generate requests.
func (c *Controller) SetPersona(id string) error {
	if _, ok := c.personas.FindByID(id); !ok {
		c.notifier.Error("Unknown persona: " + id)
		return fmt.Errorf("unknown persona %q", id)
	}
	c.mu.Lock()
	c.personaID = id
	c.mu.Unlock()
	return nil
}

// PersonaID returns the selected persona tag.
func (c *Controller) PersonaID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.personaID
}

// Messages returns a copy of the active message sequence.
func (c *Controller) Messages() []api.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Message(nil), c.messages...)
}

// Conversations returns a copy of the saved conversation list.
func (c *Controller) Conversations() []api.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Conversation(nil), c.conversations...)
}

// Selected returns the id of the loaded conversation, if any.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Clear drops messages, the conversation list, the selection, and any
// pending request marker. The session controller calls this on logout and
// on token rejection; the persona selection survives, like the theme.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.conversations = nil
	c.selected = ""
	c.pendingID = ""
}
