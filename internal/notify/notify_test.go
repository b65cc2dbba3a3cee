package notify

import (
	"sync"
	"testing"
	"time"
)

func TestShowReplacesCurrent(t *testing.T) {
	n := New(nil, WithTTL(time.Hour))

	n.Error("first")
	n.Info("second")

	got := n.Current()
	if got == nil || got.Message != "second" {
		t.Fatalf("expected 'second' visible, got %+v", got)
	}
	if got.Severity != SeverityInfo {
		t.Errorf("severity: got %q", got.Severity)
	}
}

func TestDismissClearsImmediately(t *testing.T) {
	n := New(nil, WithTTL(time.Hour))

	n.Error("oops")
	n.Dismiss()

	if got := n.Current(); got != nil {
		t.Errorf("expected no notice after Dismiss, got %+v", got)
	}
}

func TestAutoDismissAfterTTL(t *testing.T) {
	var mu sync.Mutex
	var cleared bool

	n := New(func(notice *Notice) {
		mu.Lock()
		defer mu.Unlock()
		if notice == nil {
			cleared = true
		}
	}, WithTTL(20*time.Millisecond))

	n.Error("transient")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Current() == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if n.Current() != nil {
		t.Fatal("notice not auto-dismissed")
	}
	mu.Lock()
	defer mu.Unlock()
	if !cleared {
		t.Error("onChange not invoked with nil on auto-dismiss")
	}
}

func TestShowRestartsTimerInsteadOfQueuing(t *testing.T) {
	n := New(nil, WithTTL(60*time.Millisecond))

	n.Error("first")
	time.Sleep(40 * time.Millisecond)
	n.Error("second")
	time.Sleep(40 * time.Millisecond)

	// The first notice's timer would have fired by now; the second must
	// still be visible because Show restarted the countdown.
	got := n.Current()
	if got == nil || got.Message != "second" {
		t.Fatalf("expected 'second' still visible, got %+v", got)
	}
}
