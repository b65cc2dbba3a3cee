package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, 5*time.Second), srv
}

func TestLoginSendsPasswordGrantForm(t *testing.T) {
	var gotContentType, gotGrant, gotUsername string

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotGrant = r.FormValue("grant_type")
		gotUsername = r.FormValue("username")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123"})
	}))
	defer srv.Close()

	token, err := client.Login(context.Background(), "  a@b.com ", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-123" {
		t.Errorf("token: got %q, want %q", token, "tok-123")
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type: got %q", gotContentType)
	}
	if gotGrant != "password" {
		t.Errorf("grant_type: got %q", gotGrant)
	}
	if gotUsername != "a@b.com" {
		t.Errorf("username not trimmed: got %q", gotUsername)
	}
}

func TestLoginMissingTokenIsUnauthorized(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	_, err := client.Login(context.Background(), "a@b.com", "pw")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin401(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := client.Login(context.Background(), "a@b.com", "bad")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSignupRejectedCarriesDetail(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
	}))
	defer srv.Close()

	err := client.Signup(context.Background(), "Ada", "a@b.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "Email already registered"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q missing detail %q", err, want)
	}
}

func TestSignupSuccess(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Ada" || body["email"] != "a@b.com" || body["password"] != "pw" {
			t.Errorf("unexpected signup body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"msg": "User registered!"})
	}))
	defer srv.Close()

	if err := client.Signup(context.Background(), "Ada", "a@b.com", "pw"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
}

func TestConversationsSendsBearer(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization: got %q", got)
		}
		json.NewEncoder(w).Encode([]Conversation{
			{ID: "c1", Title: "First", Messages: []Message{{Role: RoleUser, Content: "hi"}}},
		})
	}))
	defer srv.Close()

	convs, err := client.Conversations(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != "c1" {
		t.Errorf("unexpected conversations: %+v", convs)
	}
}

func TestConversations401(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := client.Conversations(context.Background(), "stale")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGenerateText(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["prompt"] != "hello" || body["persona"] != "sarcastic" {
			t.Errorf("unexpected generate body: %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "oh, hi"})
	}))
	defer srv.Close()

	reply, err := client.GenerateText(context.Background(), "tok", " hello ", "sarcastic")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if reply != "oh, hi" {
		t.Errorf("reply: got %q", reply)
	}
}

func TestGenerateTextServerErrorIsStatusError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.GenerateText(context.Background(), "tok", "hello", "friendly")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadGateway {
		t.Errorf("code: got %d", se.Code)
	}
	if !strings.Contains(se.Body, "model unavailable") {
		t.Errorf("body: got %q", se.Body)
	}
}

