// Package session owns the authentication lifecycle: the anonymous vs.
// authenticated state, the durable token, and the cascading clear that
// guarantees no authenticated data survives a logout or a rejected token.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/auth"
	"github.com/kbhargava/promptline/internal/notify"
)

// State is the explicit two-state session model: a token either exists or
// it doesn't, and everything downstream keys off that.
type State string

const (
	Anonymous     State = "anonymous"
	Authenticated State = "authenticated"
)

// Op names an operation that can be in flight.
type Op string

const (
	OpLogin    Op = "login"
	OpSignup   Op = "signup"
	OpGenerate Op = "generate"
)

// Backend is the slice of the API client the session controller uses.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, name, email, password string) error
	SaveConversation(ctx context.Context, token, title string, messages []api.Message) error
	LogoutNotify(ctx context.Context) error
}

// ConversationState is the dependent state cleared on logout and offered for
// saving before it. The conversation controller implements it.
type ConversationState interface {
	Messages() []api.Message
	Clear()
	FetchHistory(ctx context.Context) error
}

// Controller manages the session. All mutation is guarded by mu; the lock is
// never held across a network call or a call into ConversationState.
type Controller struct {
	backend  Backend
	creds    *auth.Store
	notifier *notify.Notifier

	mu      sync.Mutex
	token   string
	epoch   uint64
	pending map[Op]bool

	conv ConversationState
}

// New creates a session controller. Call Bind before use and Restore to pick
// up a persisted token.
func New(backend Backend, creds *auth.Store, notifier *notify.Notifier) *Controller {
	return &Controller{
		backend:  backend,
		creds:    creds,
		notifier: notifier,
		pending:  make(map[Op]bool),
	}
}

// Bind attaches the conversation state that gets cleared on logout.
func (c *Controller) Bind(conv ConversationState) {
	c.conv = conv
}

// Restore loads a previously persisted token, if any, so a new process
// retains the session.
func (c *Controller) Restore() error {
	stored, err := c.creds.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = stored.Token
	c.mu.Unlock()
	return nil
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return Anonymous
	}
	return Authenticated
}

// Token returns the bearer token and whether the session is authenticated.
func (c *Controller) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// Epoch returns the session epoch. It is bumped on every login and clear, so
// a response tagged with an older epoch is known to be stale.
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Pending reports whether an operation is in flight.
func (c *Controller) Pending(op Op) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[op]
}

// Begin marks an operation in flight; End clears it. The conversation
// controller uses these around generate calls.
func (c *Controller) Begin(op Op) {
	c.mu.Lock()
	c.pending[op] = true
	c.mu.Unlock()
}

// End clears an in-flight marker.
func (c *Controller) End(op Op) {
	c.mu.Lock()
	delete(c.pending, op)
	c.mu.Unlock()
}

// BeginGenerate marks a generate call in flight. It satisfies the
// conversation controller's view of the session.
func (c *Controller) BeginGenerate() { c.Begin(OpGenerate) }

// EndGenerate clears the generate in-flight marker.
func (c *Controller) EndGenerate() { c.End(OpGenerate) }

// Login authenticates with the password grant. On success the token is kept
// in memory, persisted, and the conversation history is fetched. On any
// failure the session stays anonymous and the stored token is removed.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		c.notifier.Error("Please enter your email and password.")
		return fmt.Errorf("email and password are required")
	}

	c.Begin(OpLogin)
	defer c.End(OpLogin)

	token, err := c.backend.Login(ctx, email, password)
	if err != nil {
		if clearErr := c.creds.Clear(); clearErr != nil {
			log.Printf("session: clearing stored token: %v", clearErr)
		}
		c.notifier.Error("Login failed! Check your credentials.")
		return fmt.Errorf("login: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.epoch++
	c.mu.Unlock()

	if err := c.creds.Save(&auth.Credentials{Token: token}); err != nil {
		log.Printf("session: persisting token: %v", err)
	}

	if c.conv != nil {
		if err := c.conv.FetchHistory(ctx); err != nil {
			log.Printf("session: fetching history after login: %v", err)
		}
	}
	return nil
}

// Signup registers an account. It never authenticates: on success the user
// is told to log in.
func (c *Controller) Signup(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		c.notifier.Error("Please fill in all signup fields.")
		return fmt.Errorf("name, email and password are required")
	}

	c.Begin(OpSignup)
	defer c.End(OpSignup)

	if err := c.backend.Signup(ctx, name, email, password); err != nil {
		c.notifier.Error("Signup failed: " + err.Error())
		return fmt.Errorf("signup: %w", err)
	}

	c.notifier.Success("Signup successful! Please login.")
	return nil
}

// Logout ends the session. If messages exist, askSave decides whether to
// persist them as a named conversation first (best-effort, errors swallowed).
// The server logout notification is also best-effort. Local state is cleared
// unconditionally, whatever those calls did.
func (c *Controller) Logout(ctx context.Context, askSave func() bool) {
	token, authed := c.Token()

	if authed && c.conv != nil {
		msgs := c.conv.Messages()
		if len(msgs) > 0 && askSave != nil && askSave() {
			title := "Session on " + time.Now().Format("Jan 2, 2006 15:04")
			if err := c.backend.SaveConversation(ctx, token, title, msgs); err != nil {
				log.Printf("session: save on logout (ignored): %v", err)
			}
		}
	}

	if err := c.backend.LogoutNotify(ctx); err != nil {
		log.Printf("session: logout notify (ignored): %v", err)
	}

	c.clear()
}

// Expire handles a 401 on any authenticated call: the session is cleared the
// same way logout clears it, with no save prompt and no retry, and the
// reason is surfaced.
func (c *Controller) Expire(reason string) {
	c.clear()
	if reason != "" {
		c.notifier.Error(reason)
	}
}

// clear drops the token, the stored credential, and all dependent state.
// The epoch bump makes any in-flight response stale.
func (c *Controller) clear() {
	c.mu.Lock()
	c.token = ""
	c.epoch++
	c.mu.Unlock()

	if err := c.creds.Clear(); err != nil {
		log.Printf("session: clearing stored token: %v", err)
	}
	if c.conv != nil {
		c.conv.Clear()
	}
}
