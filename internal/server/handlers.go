package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/kbhargava/promptline/internal/api"
	"github.com/kbhargava/promptline/internal/persona"
)

type ctxKey string

const ctxUserID ctxKey = "userID"

// requireToken resolves the bearer token to a user and rejects the request
// with 401 otherwise.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.store.UserForToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrTokenUnknown) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			writeError(w, http.StatusInternalServerError, "token lookup failed")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleLogin implements the OAuth2 password-grant shape: a form-encoded
// body with username, password and grant_type, answered with access_token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	email := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if grant := r.PostFormValue("grant_type"); grant != "" && grant != "password" {
		writeError(w, http.StatusBadRequest, "unsupported grant_type")
		return
	}
	if email == "" || password == "" {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	userID, err := s.store.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	token, err := s.store.IssueToken(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issuing token failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	if err := s.store.CreateUser(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"msg": "User registered!"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Best-effort from the client's perspective; revoke if a token came along.
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		if err := s.store.RevokeToken(r.Context(), token); err != nil {
			log.Printf("server: revoking token: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Logged out"})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(ctxUserID).(string)

	convs, err := s.store.ConversationsForUser(r.Context(), userID, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing conversations failed")
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt  string `json:"prompt"`
		Persona string `json:"persona"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	p, ok := s.personas.FindByID(req.Persona)
	if !ok {
		p, _ = s.personas.FindByID(persona.DefaultID)
	}

	reply, err := s.generator.Reply(r.Context(), p, req.Prompt)
	if err != nil {
		log.Printf("server: generate: %v", err)
		writeError(w, http.StatusBadGateway, "generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func (s *Server) handleSaveConversation(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(ctxUserID).(string)

	var req struct {
		Messages []api.Message `json:"messages"`
		Title    string        `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}
	if req.Title == "" {
		req.Title = "Untitled session"
	}

	id, err := s.store.SaveConversation(r.Context(), userID, req.Title, req.Messages)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "saving conversation failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDetail mirrors the signup contract, which reports failures under
// a "detail" key.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
