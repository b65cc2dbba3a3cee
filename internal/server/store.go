package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/kbhargava/promptline/internal/api"
)

// ErrInvalidCredentials is returned when a login attempt does not match a
// registered user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when signing up with an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrTokenUnknown is returned when a bearer token has no live session.
var ErrTokenUnknown = errors.New("unknown token")

// Store is the demo backend's SQLite persistence: users, issued tokens, and
// saved conversations (messages as a JSON blob per row).
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemoryStore creates an in-memory database (useful for testing).
func OpenMemoryStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tokens (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tokens_user ON tokens(user_id);

CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL DEFAULT '',
    messages TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at);
`

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *Store) CreateUser(ctx context.Context, name, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if exists > 0 {
		return ErrEmailTaken
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), name, email, string(hash))
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Authenticate verifies credentials and returns the user id.
func (s *Store) Authenticate(ctx context.Context, email, password string) (string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return id, nil
}

// IssueToken creates a new opaque bearer token for the user.
func (s *Store) IssueToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, user_id) VALUES (?, ?)`, token, userID)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}

// UserForToken resolves a bearer token to a user id.
func (s *Store) UserForToken(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM tokens WHERE token = ?`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenUnknown
	}
	if err != nil {
		return "", fmt.Errorf("looking up token: %w", err)
	}
	return userID, nil
}

// RevokeToken deletes a bearer token. Unknown tokens are not an error.
func (s *Store) RevokeToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// SaveConversation stores a titled message sequence for the user and returns
// the new conversation id.
func (s *Store) SaveConversation(ctx context.Context, userID, title string, messages []api.Message) (string, error) {
	blob, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("encoding messages: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, messages) VALUES (?, ?, ?, ?)`,
		id, userID, title, string(blob))
	if err != nil {
		return "", fmt.Errorf("inserting conversation: %w", err)
	}
	return id, nil
}

// ConversationsForUser lists the user's saved conversations, newest first.
func (s *Store) ConversationsForUser(ctx context.Context, userID string, limit int) ([]api.Conversation, error) {
	query := `SELECT id, title, messages FROM conversations WHERE user_id = ? ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	convs := []api.Conversation{}
	for rows.Next() {
		var conv api.Conversation
		var blob string
		if err := rows.Scan(&conv.ID, &conv.Title, &blob); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &conv.Messages); err != nil {
			return nil, fmt.Errorf("decoding messages for %s: %w", conv.ID, err)
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}
