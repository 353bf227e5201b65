package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"jarvis/internal/auth"
	"jarvis/internal/config"
	"jarvis/internal/emotion"
	"jarvis/internal/llm"
	"jarvis/internal/memory"
	"jarvis/internal/orchestrator"
	"jarvis/internal/session"
	"jarvis/internal/skillmatch"
	"jarvis/internal/store"
)

type ctxKey int

const userCtxKey ctxKey = iota

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.New(ctx, cfg.DBBackend, cfg.DBDSN, cfg.DBPath)
	if err != nil {
		logger.Error("connect store failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	llmProvider, err := llm.NewProvider(llm.Config{
		Provider:         strings.ToLower(cfg.LLMProvider),
		GroqAPIKey:       cfg.GroqAPIKey,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
	})
	if err != nil {
		logger.Error("init llm provider failed", "error", err)
		os.Exit(1)
	}

	chatModel := cfg.GroqChatModel
	if cfg.LLMProvider == "anthropic" {
		chatModel = "claude-3-5-sonnet-latest"
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret)
	authSvc := auth.NewService(st, tokens)
	googleVerifier := auth.NewGoogleVerifier(cfg.GoogleClientID, &http.Client{Timeout: 10 * time.Second})

	sessions := session.NewManager(session.DefaultFactory, cfg.SessionIdleTimeout)
	reaperGroup, _ := session.StartReaper(ctx, sessions, 5*time.Minute, logger)

	orch := &orchestrator.Service{
		Sessions:    sessions,
		Store:       st,
		LLM:         llmProvider,
		LLMModel:    chatModel,
		FactModel:   cfg.GroqAnalyzerModel,
		Analyzer:    emotion.NewClient(cfg.AnalyzerBaseURL, 10*time.Second),
		Facts:       memory.NewFactStore(st),
		Notes:       memory.NewNoteStore(),
		Skills:      skillmatch.Default(),
		TurnSeconds: cfg.TurnSeconds,
		Logger:      logger,
	}

	api := &apiServer{
		cfg:      cfg,
		store:    st,
		auth:     authSvc,
		tokens:   tokens,
		google:   googleVerifier,
		sessions: sessions,
		orch:     orch,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(api.withOptionalUser)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", api.handleRegister)
		r.Post("/login", api.handleLogin)
		r.Post("/google", api.handleGoogleLogin)
		r.Post("/guest", api.handleGuest)
		r.Post("/upgrade-guest", api.handleUpgradeGuest)
		r.Get("/me", api.handleMe)
	})

	r.Post("/api/chat", api.handleChat)
	r.Get("/api/state", api.handleState)
	r.Get("/api/config", api.handleConfig)
	r.Post("/api/reset", api.handleReset)
	r.Get("/api/user/conversations", api.handleListConversations)
	r.Get("/api/conversations/{id}/messages", api.handleConversationMessages)
	r.Get("/api/user/facts", api.handleFactsList)
	r.Post("/api/user/facts", api.handleFactsCreate)
	r.Delete("/api/user/facts", api.handleFactsDelete)
	r.Get("/api/export/history", api.handleExportHistory)
	r.Get("/api/export/csv", api.handleExportCSV)
	r.Get("/api/export/txt", api.handleExportTXT)
	r.Get("/api/autotest/start", api.handleAutotestStart)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("evc server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	cancel()
	if err := reaperGroup.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session reaper stopped with error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
