package notify

import (
	"sync"
	"time"
)

// Severity classifies a notice for rendering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DefaultTTL is how long a notice stays visible before auto-dismissing.
const DefaultTTL = 4500 * time.Millisecond

// Notice is a single transient user-facing message.
type Notice struct {
	Severity Severity
	Message  string
}

// Notifier is a single-slot transient message surface. At most one notice is
// visible at a time; a new Show replaces the current notice and restarts the
// auto-dismiss timer rather than queuing.
type Notifier struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  *Notice
	timer    *time.Timer
	onChange func(*Notice)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithTTL overrides the auto-dismiss duration.
func WithTTL(ttl time.Duration) Option {
	return func(n *Notifier) { n.ttl = ttl }
}

// New creates a Notifier. onChange is invoked with the new notice on Show and
// with nil on dismissal; it may be nil.
func New(onChange func(*Notice), opts ...Option) *Notifier {
	n := &Notifier{ttl: DefaultTTL, onChange: onChange}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show displays a notice, replacing any current one and restarting the timer.
func (n *Notifier) Show(severity Severity, message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	notice := &Notice{Severity: severity, Message: message}
	n.current = notice
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(notice) })
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb(notice)
	}
}

// Info shows an informational notice.
func (n *Notifier) Info(message string) { n.Show(SeverityInfo, message) }

// Success shows a positive confirmation.
func (n *Notifier) Success(message string) { n.Show(SeveritySuccess, message) }

// Error shows an error notice.
func (n *Notifier) Error(message string) { n.Show(SeverityError, message) }

// Dismiss clears the current notice immediately and cancels the pending timer.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	had := n.current != nil
	n.current = nil
	cb := n.onChange
	n.mu.Unlock()

	if had && cb != nil {
		cb(nil)
	}
}

// Current returns the visible notice, or nil.
func (n *Notifier) Current() *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// expire dismisses the notice only if it is still the one the timer was armed
// for. A Show that raced the timer keeps its own notice.
func (n *Notifier) expire(notice *Notice) {
	n.mu.Lock()
	if n.current != notice {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	cb := n.onChange
	n.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
}
