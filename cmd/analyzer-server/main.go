// Command analyzer-server is the standalone emotion-signal analyzer the
// main chat server calls over HTTP. It scores a message into {S,D,C}
// plus a short label, preferring the configured LLM and falling back to
// a keyword heuristic on any failure.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"jarvis/internal/emotion"
	"jarvis/internal/llm"
)

type serverConfig struct {
	HTTPAddr        string
	ReadBodyMaxByte int64
	LLMProvider     string
	LLMModel        string
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := loadConfig()

	var provider llm.Provider
	if cfg.LLMProvider != "" {
		p, err := llm.NewProvider(llm.Config{
			Provider:         cfg.LLMProvider,
			GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
			AnthropicBaseURL: getenvDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		})
		if err != nil {
			logger.Warn("llm provider unavailable, running heuristic-only", "error", err)
		} else {
			provider = p
		}
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "llm_enabled": provider != nil})
	})
	r.Post("/v1/analyze", func(w http.ResponseWriter, req *http.Request) {
		var in analyzeRequest
		if err := decodeJSONBody(req, cfg.ReadBodyMaxByte, &in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "text is required"})
			return
		}

		if provider != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 8*time.Second)
			sig, err := emotion.LLMAnalyze(ctx, provider, cfg.LLMModel, in.Text)
			cancel()
			if err == nil {
				writeJSON(w, http.StatusOK, sig)
				return
			}
			logger.Warn("llm analyze failed, using heuristic", "error", err)
		}

		s, d, c, label := emotion.Heuristic(in.Text)
		s, d, c = emotion.Clamp(s, d, c)
		writeJSON(w, http.StatusOK, map[string]any{"S": s, "D": d, "C": c, "user_emotion": label})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("analyzer server started", "addr", cfg.HTTPAddr, "llm_enabled", provider != nil)
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
}

func decodeJSONBody(req *http.Request, maxBytes int64, out any) error {
	defer req.Body.Close()
	data, err := io.ReadAll(io.LimitReader(req.Body, maxBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return fmt.Errorf("request body too large")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid json: multiple JSON values")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func loadConfig() serverConfig {
	return serverConfig{
		HTTPAddr:        getenvDefault("ANALYZER_HTTP_ADDR", ":9012"),
		ReadBodyMaxByte: int64(getenvIntDefault("ANALYZER_MAX_BODY_BYTES", 65536)),
		LLMProvider:     strings.ToLower(getenvDefault("LLM_PROVIDER", "groq")),
		LLMModel:        getenvDefault("GROQ_ANALYZER_MODEL", "llama-3.1-8b-instant"),
	}
}

func getenvDefault(key, val string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
