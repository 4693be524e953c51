// ABOUTME: HTTP API handlers for registration, login, users, and message history
// ABOUTME: JSON request/response types mirror the wire contract exactly

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/2389/babel-gateway/internal/auth"
)

// RegisterRequest is the JSON request body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Language string `json:"language"`
}

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Language string `json:"language"`
}

// LoginRequest is the JSON request body for POST /token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the JSON response for POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is the JSON representation of a persisted message.
type MessageResponse struct {
	ID                int64  `json:"id"`
	SenderID          int64  `json:"sender_id"`
	ReceiverID        int64  `json:"receiver_id"`
	OriginalMessage   string `json:"original_message"`
	TranslatedMessage string `json:"translated_message"`
	Timestamp         string `json:"timestamp"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleRegister handles POST /register requests.
// Creates a new user account; duplicate usernames are a conflict.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := g.authSvc.Register(r.Context(), req.Username, req.Password, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrInvalidUsername),
			errors.Is(err, auth.ErrInvalidLanguage),
			errors.Is(err, auth.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			g.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Language: user.Language,
	})
}

// handleLogin handles POST /token requests.
// Verifies credentials and returns a bearer token.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := g.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		g.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleMe handles GET /users/me requests.
func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, UserResponse{
		ID:       principal.ID,
		Username: principal.Username,
		Language: principal.Language,
	})
}

// handleListUsers handles GET /users requests.
// Supports ?limit= and ?offset= query parameters.
func (g *Gateway) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 100)
	offset := parseIntParam(r, "offset", 0)

	users, err := g.store.ListUsers(r.Context(), limit, offset)
	if err != nil {
		g.logger.Error("listing users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Language: u.Language,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// handleMessages handles GET /messages/{userID} requests.
// Returns the timestamp-ordered conversation between the caller and the
// target user, in both directions.
func (g *Gateway) handleMessages(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustFromContext(r.Context())

	otherID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	messages, err := g.store.ListConversation(r.Context(), principal.ID, otherID)
	if err != nil {
		g.logger.Error("listing conversation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, MessageResponse{
			ID:                m.ID,
			SenderID:          m.SenderID,
			ReceiverID:        m.ReceiverID,
			OriginalMessage:   m.OriginalMessage,
			TranslatedMessage: m.TranslatedMessage,
			Timestamp:         m.Timestamp.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// parseIntParam reads a non-negative integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
