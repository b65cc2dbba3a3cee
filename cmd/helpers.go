package cmd

import (
	"fmt"
	"os"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/auth"
	"github.com/kbhargava/promptline/internal/config"
	"github.com/kbhargava/promptline/internal/conversation"
	"github.com/kbhargava/promptline/internal/notify"
	"github.com/kbhargava/promptline/internal/persona"
	"github.com/kbhargava/promptline/internal/session"
	"github.com/kbhargava/promptline/internal/theme"
)

// app bundles the client-side controllers every command wires the same way.
type app struct {
	cfg      *config.Config
	client   *api.Client
	notifier *notify.Notifier
	session  *session.Controller
	conv     *conversation.Controller
	themes   *theme.Controller
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `promptline init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// stateDir resolves where tokens and preferences live.
func stateDir(cfg *config.Config) (string, error) {
	if cfg.StateDir != "" {
		return cfg.StateDir, nil
	}
	return auth.DefaultDir()
}

// newApp wires the full client: API transport, theme, notification surface,
// session and conversation controllers, restoring any persisted token.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := stateDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolving state directory: %w", err)
	}

	themes, err := theme.NewController(theme.NewStore(dir), theme.DetectTerminal)
	if err != nil {
		return nil, fmt.Errorf("loading theme preference: %w", err)
	}

	notifier := notify.New(func(n *notify.Notice) {
		if n == nil {
			return
		}
		pal := themes.Palette()
		color := pal.Notice
		if n.Severity == notify.SeverityError {
			color = pal.Error
		}
		fmt.Fprintf(os.Stderr, "%s%s%s\n", color, n.Message, pal.Reset)
	})

	client := api.New(cfg.BaseURL, cfg.RequestTimeout())
	creds := auth.NewStore(dir)
	personas := persona.NewMemoryStore(persona.Seed())

	sess := session.New(client, creds, notifier)
	conv := conversation.New(client, sess, notifier, personas)
	sess.Bind(conv)

	if err := sess.Restore(); err != nil {
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	if cfg.Persona != "" {
		if err := conv.SetPersona(cfg.Persona); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:      cfg,
		client:   client,
		notifier: notifier,
		session:  sess,
		conv:     conv,
		themes:   themes,
	}, nil
}

// requireLogin fails fast with a helpful message when no session exists.
func (a *app) requireLogin() error {
	if a.session.State() != session.Authenticated {
		return fmt.Errorf("not logged in; run `promptline login` first")
	}
	return nil
}

// recentConversations returns the saved list capped at the configured
// history_limit (0 means unlimited).
func (a *app) recentConversations() []api.Conversation {
	convs := a.conv.Conversations()
	if a.cfg.HistoryLimit > 0 && len(convs) > a.cfg.HistoryLimit {
		convs = convs[:a.cfg.HistoryLimit]
	}
	return convs
}
