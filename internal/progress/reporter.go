// Package progress provides in-flight feedback while a generate request is
// pending. The terminal variant renders an indeterminate spinner; the CI
// variant degrades to plain lines.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows that a request is in flight.
type Spinner interface {
	Start(label string)
	Stop()
}

// NewSpinner returns a TerminalSpinner if running in an interactive terminal,
// or a CISpinner if the CI environment variable is set.
func NewSpinner() Spinner {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CISpinner{}
	}
	return &TerminalSpinner{}
}

// TerminalSpinner animates a progressbar spinner until stopped.
type TerminalSpinner struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func (s *TerminalSpinner) Start(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	s.done = make(chan struct{})

	go func(bar *progressbar.ProgressBar, done chan struct{}) {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.done)
}

func (s *TerminalSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar == nil {
		return
	}
	close(s.done)
	_ = s.bar.Finish()
	s.bar = nil
	s.done = nil
}

// CISpinner prints a single line per request, suitable for CI logs.
type CISpinner struct{}

func (CISpinner) Start(label string) {
	fmt.Fprintln(os.Stderr, label)
}

func (CISpinner) Stop() {}
