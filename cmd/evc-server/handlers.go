package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"jarvis/internal/auth"
	"jarvis/internal/config"
	"jarvis/internal/domain"
	"jarvis/internal/export"
	"jarvis/internal/orchestrator"
	"jarvis/internal/session"
	"jarvis/internal/store"
)

// apiServer holds every collaborator an HTTP handler might need. Handlers
// are thin: they decode, delegate, and encode.
type apiServer struct {
	cfg      config.Config
	store    store.Store
	auth     *auth.Service
	tokens   *auth.TokenIssuer
	google   *auth.GoogleVerifier
	sessions *session.Manager
	orch     *orchestrator.Service
	logger   *slog.Logger
}

// withOptionalUser decodes a bearer token into the request context when
// present and valid; it never rejects a request for a missing or bad
// token, since most of the surface supports guest access.
func (a *apiServer) withOptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := a.auth.GetCurrentUser(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userCtxKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(r *http.Request) *domain.User {
	u, _ := r.Context().Value(userCtxKey).(*domain.User)
	return u
}

func (a *apiServer) requireUser(w http.ResponseWriter, r *http.Request) *domain.User {
	user := userFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return user
}

func (a *apiServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	user, token, err := a.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: user})
}

func (a *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	user, token, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: user})
}

func (a *apiServer) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sub, email, err := a.google.Verify(r.Context(), req.Credential)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid google credential")
		return
	}
	user, token, err := a.auth.GoogleLogin(r.Context(), sub, email)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: user})
}

func (a *apiServer) handleGuest(w http.ResponseWriter, r *http.Request) {
	user, token, err := a.auth.CreateGuest(r.Context())
	if err != nil {
		a.logger.Error("create guest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create guest")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: user})
}

func (a *apiServer) handleUpgradeGuest(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	upgraded, token, err := a.auth.UpgradeGuest(r.Context(), user.ID, req.Username, req.Password, req.Email)
	if err != nil {
		a.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: token, User: upgraded})
}

func (a *apiServer) handleMe(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *apiServer) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrNotGuest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.logger.Error("auth operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (a *apiServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	resp, err := a.orch.HandleChat(r.Context(), userFromContext(r), req)
	if err != nil {
		a.logger.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) handleState(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	serialized, ok := a.sessions.Serialize(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, serialized)
}

func (a *apiServer) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	existed := a.sessions.Reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "reset": existed})
}

func (a *apiServer) handleListConversations(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	limit := parseLimit(r, 50)
	convs, err := a.store.ListConversations(r.Context(), user.ID, limit)
	if err != nil {
		a.logger.Error("list conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": convs})
}

func (a *apiServer) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	id := chi.URLParam(r, "id")
	conv, err := a.store.GetConversation(r.Context(), id)
	if err != nil || conv.UserID != user.ID {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	limit := parseLimit(r, 100)
	msgs, err := a.store.GetMessages(r.Context(), id, limit)
	if err != nil {
		a.logger.Error("get messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	resp := map[string]any{"messages": msgs}
	if blob, _, err := a.store.GetEVCState(r.Context(), id); err == nil {
		var saved store.EVCBlob
		if json.Unmarshal(blob, &saved) == nil {
			resp["bot_state"] = saved.EVCState
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *apiServer) handleFactsList(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	category := r.URL.Query().Get("category")
	var (
		facts []domain.Fact
		err   error
	)
	if category != "" {
		facts, err = a.orch.Facts.ByCategory(r.Context(), user.ID, category)
	} else {
		facts, err = a.orch.Facts.All(r.Context(), user.ID)
	}
	if err != nil {
		a.logger.Error("list facts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list facts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": facts})
}

func (a *apiServer) handleFactsCreate(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	var req struct {
		Category   string  `json:"category"`
		Key        string  `json:"key"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Key == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, "key and value are required")
		return
	}
	if req.Confidence <= 0 {
		req.Confidence = 1.0
	}
	fact, err := a.orch.Facts.Learn(r.Context(), user.ID, req.Category, req.Key, req.Value, req.Confidence)
	if err != nil {
		a.logger.Error("learn fact failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save fact")
		return
	}
	writeJSON(w, http.StatusOK, fact)
}

func (a *apiServer) handleFactsDelete(w http.ResponseWriter, r *http.Request) {
	user := a.requireUser(w, r)
	if user == nil {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := a.orch.Facts.Forget(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "fact not found")
			return
		}
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *apiServer) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	serialized, ok := a.sessions.Serialize(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, serialized)
}

func (a *apiServer) turnLogFor(sessionID string) ([]domain.TurnResult, bool) {
	state := a.sessions.GetOrCreate(sessionID)
	if state.Engine == nil || len(state.Engine.TurnLog) == 0 {
		return nil, false
	}
	return state.Engine.TurnLog, true
}

func (a *apiServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	turns, ok := a.turnLogFor(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "no turns recorded for this session")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, sessionID))
	if err := export.WriteCSV(w, turns); err != nil {
		a.logger.Error("write csv export failed", "error", err)
	}
}

func (a *apiServer) handleExportTXT(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	turns, ok := a.turnLogFor(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "no turns recorded for this session")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.txt"`, sessionID))
	if err := export.WriteTXT(w, turns); err != nil {
		a.logger.Error("write txt export failed", "error", err)
	}
}

// handleConfig reports the handful of runtime settings a frontend needs
// before it can render, e.g. which Google client id to use for the
// sign-in button. Nothing secret lives in this response.
func (a *apiServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"google_client_id": a.cfg.GoogleClientID,
	})
}

// handleAutotestStart streams one synthetic scripted turn per tick as
// server-sent events, for exercising the frontend without live input.
func (a *apiServer) handleAutotestStart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	delay := 2 * time.Second
	if raw := r.URL.Query().Get("delay_seconds"); raw != "" {
		if n, err := strconv.ParseFloat(raw, 64); err == nil && n >= 0 {
			delay = time.Duration(n * float64(time.Second))
		}
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	script := autotestScript
	for _, msg := range script {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		resp, err := a.orch.HandleChat(r.Context(), userFromContext(r), domain.ChatHTTPRequest{SessionID: sessionID, Message: msg})
		if err != nil {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
			flusher.Flush()
			return
		}
		payload, _ := json.Marshal(resp)
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

var autotestScript = []string{
	"Hi there, how are you?",
	"I just got some great news today!",
	"Actually I'm a bit worried about tomorrow.",
	"Thanks for listening.",
}
