package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/notify"
	"github.com/kbhargava/promptline/internal/persona"
)

type fakeSession struct {
	token    string
	epoch    uint64
	onExpire func()
}

func (s *fakeSession) Token() (string, bool) { return s.token, s.token != "" }
func (s *fakeSession) Epoch() uint64         { return atomic.LoadUint64(&s.epoch) }
func (s *fakeSession) BeginGenerate()        {}
func (s *fakeSession) EndGenerate()          {}

func (s *fakeSession) Expire(reason string) {
	s.token = ""
	atomic.AddUint64(&s.epoch, 1)
	if s.onExpire != nil {
		s.onExpire()
	}
}

type fakeBackend struct {
	generateCalls int
	historyCalls  int
	reply         string
	generateErr   error
	conversations []api.Conversation
	historyErr    error
	onGenerate    func()
}

func (b *fakeBackend) GenerateText(ctx context.Context, token, prompt, persona string) (string, error) {
	b.generateCalls++
	if b.onGenerate != nil {
		b.onGenerate()
	}
	return b.reply, b.generateErr
}

func (b *fakeBackend) Conversations(ctx context.Context, token string) ([]api.Conversation, error) {
	b.historyCalls++
	return b.conversations, b.historyErr
}

func newTestController(backend *fakeBackend, sess *fakeSession) *Controller {
	notifier := notify.New(nil, notify.WithTTL(time.Hour))
	return New(backend, sess, notifier, persona.NewMemoryStore(persona.Seed()))
}

func TestSendPromptUnauthenticatedIssuesNoCall(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend, &fakeSession{})

	if err := c.SendPrompt(context.Background(), "hi"); err == nil {
		t.Fatal("expected error while unauthenticated")
	}
	if backend.generateCalls != 0 {
		t.Errorf("expected no network call, got %d", backend.generateCalls)
	}
	if got := c.Messages(); len(got) != 0 {
		t.Errorf("message list changed: %+v", got)
	}
}

func TestSendPromptBlankIssuesNoCall(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend, &fakeSession{token: "tok"})

	if err := c.SendPrompt(context.Background(), "   \t"); err == nil {
		t.Fatal("expected error for blank prompt")
	}
	if backend.generateCalls != 0 {
		t.Errorf("expected no network call, got %d", backend.generateCalls)
	}
}

func TestSendPromptReplacesPlaceholderInPlace(t *testing.T) {
	backend := &fakeBackend{reply: "server reply"}
	c := newTestController(backend, &fakeSession{token: "tok"})

	var midFlight []api.Message
	backend.onGenerate = func() { midFlight = c.Messages() }

	if err := c.SendPrompt(context.Background(), "hello"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}

	if len(midFlight) != 2 || midFlight[1].Content != Placeholder {
		t.Fatalf("expected placeholder while in flight, got %+v", midFlight)
	}
	if midFlight[1].Role != api.RoleAssistant {
		t.Errorf("placeholder role: got %q", midFlight[1].Role)
	}

	got := c.Messages()
	if len(got) != len(midFlight) {
		t.Errorf("message count changed on resolve: %d != %d", len(got), len(midFlight))
	}
	if got[0].Role != api.RoleUser || got[0].Content != "hello" {
		t.Errorf("user message: %+v", got[0])
	}
	if got[1].Role != api.RoleAssistant || got[1].Content != "server reply" {
		t.Errorf("assistant message not resolved in place: %+v", got[1])
	}
}

func TestSendPromptFailureRollsBackOnlyPlaceholder(t *testing.T) {
	backend := &fakeBackend{generateErr: &api.StatusError{Code: 502, Body: "bad gateway"}}
	sess := &fakeSession{token: "tok"}
	c := newTestController(backend, sess)

	before := len(c.Messages())
	if err := c.SendPrompt(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}

	got := c.Messages()
	if len(got) != before+1 {
		t.Fatalf("expected pre-call count + 1, got %d messages", len(got))
	}
	if got[0].Role != api.RoleUser || got[0].Content != "hello" {
		t.Errorf("surviving message should be the user's: %+v", got[0])
	}
}

func TestSendPromptUnauthorizedClearsEverything(t *testing.T) {
	backend := &fakeBackend{generateErr: api.ErrUnauthorized}
	sess := &fakeSession{token: "tok"}
	c := newTestController(backend, sess)
	sess.onExpire = c.Clear

	if err := c.SendPrompt(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := sess.Token(); ok {
		t.Error("token survived a 401")
	}
	if got := c.Messages(); len(got) != 0 {
		t.Errorf("messages survived a 401: %+v", got)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	backend := &fakeBackend{reply: "late reply"}
	sess := &fakeSession{token: "tok"}
	c := newTestController(backend, sess)
	sess.onExpire = c.Clear

	// Logout races the in-flight generate call: by the time the response
	// arrives the session epoch has moved on.
	backend.onGenerate = func() { sess.Expire("") }

	if err := c.SendPrompt(context.Background(), "hello"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	if got := c.Messages(); len(got) != 0 {
		t.Errorf("stale response revived cleared state: %+v", got)
	}
}

func TestLoadConversationIsIdempotent(t *testing.T) {
	c := newTestController(&fakeBackend{}, &fakeSession{token: "tok"})

	conv := api.Conversation{
		ID:    "c1",
		Title: "First",
		Messages: []api.Message{
			{Role: api.RoleUser, Content: "hi"},
			{Role: api.RoleAssistant, Content: "hello"},
		},
	}

	c.LoadConversation(conv)
	first := c.Messages()
	c.LoadConversation(conv)
	second := c.Messages()

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("message %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if c.Selected() != "c1" {
		t.Errorf("selected: got %q", c.Selected())
	}
}

func TestLoadConversationReplacesWholesale(t *testing.T) {
	backend := &fakeBackend{reply: "r"}
	c := newTestController(backend, &fakeSession{token: "tok"})

	if err := c.SendPrompt(context.Background(), "in progress"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}

	c.LoadConversation(api.Conversation{ID: "c2", Messages: []api.Message{
		{Role: api.RoleUser, Content: "old"},
	}})

	got := c.Messages()
	if len(got) != 1 || got[0].Content != "old" {
		t.Errorf("expected wholesale replacement, got %+v", got)
	}
}

func TestFetchHistoryFailureKeepsExistingList(t *testing.T) {
	backend := &fakeBackend{conversations: []api.Conversation{{ID: "c1"}}}
	sess := &fakeSession{token: "tok"}
	c := newTestController(backend, sess)

	if err := c.FetchHistory(context.Background()); err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}

	backend.historyErr = &api.StatusError{Code: 500}
	if err := c.FetchHistory(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := c.Conversations(); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("existing list not preserved: %+v", got)
	}
}

func TestFetchHistoryUnauthorizedExpiresSession(t *testing.T) {
	backend := &fakeBackend{historyErr: api.ErrUnauthorized}
	sess := &fakeSession{token: "tok"}
	c := newTestController(backend, sess)
	sess.onExpire = c.Clear

	if err := c.FetchHistory(context.Background()); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, ok := sess.Token(); ok {
		t.Error("token survived a 401")
	}
}

func TestSetPersona(t *testing.T) {
	c := newTestController(&fakeBackend{}, &fakeSession{})

	if c.PersonaID() != persona.DefaultID {
		t.Errorf("default persona: got %q", c.PersonaID())
	}
	if err := c.SetPersona("dev"); err != nil {
		t.Fatalf("SetPersona: %v", err)
	}
	if c.PersonaID() != "dev" {
		t.Errorf("persona: got %q", c.PersonaID())
	}
	if err := c.SetPersona("pirate"); err == nil {
		t.Error("expected error for unknown persona")
	}
	if c.PersonaID() != "dev" {
		t.Errorf("failed SetPersona changed selection: %q", c.PersonaID())
	}
}

func TestPersonaSurvivesClear(t *testing.T) {
	c := newTestController(&fakeBackend{}, &fakeSession{token: "tok"})

	if err := c.SetPersona("translator"); err != nil {
		t.Fatalf("SetPersona: %v", err)
	}
	c.Clear()
	if c.PersonaID() != "translator" {
		t.Errorf("persona reset by Clear: %q", c.PersonaID())
	}
}
