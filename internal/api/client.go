package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// Callers clear the session on this error; no retry is attempted.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request failed: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("request failed: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Client talks to the promptline backend. Every call is a single attempt:
// no retry, no backoff.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend base URL the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Login performs the OAuth2 password-grant login and returns the access token.
// A 401, a missing token in the response, or any transport failure is an error.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"username":   {strings.TrimSpace(email)},
		"password":   {password},
		"grant_type": {"password"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if body.AccessToken == "" {
		return "", ErrUnauthorized
	}
	return body.AccessToken, nil
}

// Signup registers a new account. It never authenticates the caller.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	payload := signupRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	resp, err := c.postJSON(ctx, "/signup", "", payload)
	if err != nil {
		return fmt.Errorf("signup request: %w", err)
	}
	defer resp.Body.Close()

	var body signupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding signup response: %w", err)
	}
	if body.Msg != "User registered!" {
		detail := body.Detail
		if detail == "" {
			detail = fmt.Sprintf("unexpected response (%d)", resp.StatusCode)
		}
		return fmt.Errorf("signup rejected: %s", detail)
	}
	return nil
}

// Conversations fetches the saved conversation list for the given token.
func (c *Client) Conversations(ctx context.Context, token string) ([]Conversation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var convs []Conversation
	if err := json.NewDecoder(resp.Body).Decode(&convs); err != nil {
		return nil, fmt.Errorf("decoding conversations: %w", err)
	}
	return convs, nil
}

// GenerateText submits a prompt with a persona tag and returns the assistant reply.
func (c *Client) GenerateText(ctx context.Context, token, prompt, persona string) (string, error) {
	payload := generateRequest{Prompt: strings.TrimSpace(prompt), Persona: persona}

	resp, err := c.postJSON(ctx, "/generate-text", token, payload)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	return body.Response, nil
}

// SaveConversation persists the message sequence under a title. Best-effort:
// callers ignore the returned error by contract, it exists for logging only.
func (c *Client) SaveConversation(ctx context.Context, token, title string, messages []Message) error {
	payload := saveConversationRequest{Messages: messages, Title: title}

	resp, err := c.postJSON(ctx, "/save-conversation", token, payload)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// LogoutNotify tells the backend the session is ending. Best-effort: failures
// are never surfaced to the user.
func (c *Client) LogoutNotify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.http.Do(req)
}

// checkStatus maps a response status to the client error taxonomy. The body
// is consumed on failure so the error can carry the backend's message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}
