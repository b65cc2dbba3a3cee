package conversation_test

import (
	"context"
	"testing"
	"time"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/auth"
	"github.com/kbhargava/promptline/internal/conversation"
	"github.com/kbhargava/promptline/internal/notify"
	"github.com/kbhargava/promptline/internal/persona"
	"github.com/kbhargava/promptline/internal/session"
)

// scenarioBackend serves both controllers, standing in for the whole REST
// backend.
type scenarioBackend struct {
	generateCalls int
}

func (b *scenarioBackend) Login(ctx context.Context, email, password string) (string, error) {
	return "tok-scenario", nil
}

func (b *scenarioBackend) Signup(ctx context.Context, name, email, password string) error {
	return nil
}

func (b *scenarioBackend) SaveConversation(ctx context.Context, token, title string, messages []api.Message) error {
	return nil
}

func (b *scenarioBackend) LogoutNotify(ctx context.Context) error { return nil }

func (b *scenarioBackend) GenerateText(ctx context.Context, token, prompt, personaID string) (string, error) {
	b.generateCalls++
	return "server reply", nil
}

func (b *scenarioBackend) Conversations(ctx context.Context, token string) ([]api.Conversation, error) {
	return []api.Conversation{}, nil
}

// TestFullSessionScenario walks the canonical flow: prompt while logged out,
// login, prompt, logout declining the save.
func TestFullSessionScenario(t *testing.T) {
	ctx := context.Background()
	backend := &scenarioBackend{}
	notifier := notify.New(nil, notify.WithTTL(time.Hour))
	creds := auth.NewStore(t.TempDir())

	sess := session.New(backend, creds, notifier)
	conv := conversation.New(backend, sess, notifier, persona.NewMemoryStore(persona.Seed()))
	sess.Bind(conv)

	// Unauthenticated prompt: error shown, list stays empty, no call made.
	if err := conv.SendPrompt(ctx, "hi"); err == nil {
		t.Fatal("expected error while unauthenticated")
	}
	if backend.generateCalls != 0 {
		t.Fatalf("network call issued while unauthenticated")
	}
	if len(conv.Messages()) != 0 {
		t.Fatalf("messages: %+v", conv.Messages())
	}
	if notifier.Current() == nil {
		t.Fatal("expected an error notice")
	}

	// Login succeeds: token set, history fetched.
	if err := sess.Login(ctx, "a@b.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.State() != session.Authenticated {
		t.Fatalf("state: %q", sess.State())
	}

	// Prompt resolves to [user, assistant].
	if err := conv.SendPrompt(ctx, "hello"); err != nil {
		t.Fatalf("SendPrompt: %v", err)
	}
	got := conv.Messages()
	if len(got) != 2 {
		t.Fatalf("messages: %+v", got)
	}
	if got[0] != (api.Message{Role: api.RoleUser, Content: "hello"}) {
		t.Errorf("user turn: %+v", got[0])
	}
	if got[1] != (api.Message{Role: api.RoleAssistant, Content: "server reply"}) {
		t.Errorf("assistant turn: %+v", got[1])
	}

	// Logout declining the save: everything cleared.
	sess.Logout(ctx, func() bool { return false })
	if sess.State() != session.Anonymous {
		t.Error("token survived logout")
	}
	if len(conv.Messages()) != 0 {
		t.Errorf("messages survived logout: %+v", conv.Messages())
	}
	if len(conv.Conversations()) != 0 {
		t.Errorf("conversation list survived logout: %+v", conv.Conversations())
	}
}
