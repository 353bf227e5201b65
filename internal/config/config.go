// Package config loads process configuration from the environment,
// following the defensive getenv-with-default pattern used throughout
// this repository's services.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the evc-server's full runtime configuration.
type Config struct {
	HTTPAddr       string
	FrontendOrigin string

	JWTSecret    string
	TurnSeconds  float64

	DBBackend string // "postgres" | "sqlite"
	DBDSN     string
	DBPath    string

	LLMProvider       string
	GroqAPIKey        string
	GroqAnalyzerModel string
	GroqChatModel     string
	AnthropicAPIKey   string
	AnthropicBaseURL  string

	GoogleClientID string

	FirebaseCredentials string

	AnalyzerBaseURL string

	SessionIdleTimeout time.Duration
	LogLevel           string
}

// Load reads .env (if present) then the process environment, applying
// sensible defaults for every variable this service reads.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		FrontendOrigin: getenvDefault("FRONTEND_ORIGIN", "*"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TurnSeconds: getenvFloatDefault("TURN_SECONDS", 300),

		DBBackend: getenvDefault("DB_BACKEND", "postgres"),
		DBDSN:     os.Getenv("DB_DSN"),
		DBPath:    getenvDefault("DB_PATH", "./jarvis.db"),

		LLMProvider:       getenvDefault("LLM_PROVIDER", "groq"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		GroqAnalyzerModel: getenvDefault("GROQ_ANALYZER_MODEL", "llama-3.1-8b-instant"),
		GroqChatModel:     getenvDefault("GROQ_CHAT_MODEL", "llama-3.3-70b-versatile"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicBaseURL:  getenvDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),

		AnalyzerBaseURL: os.Getenv("ANALYZER_BASE_URL"),

		SessionIdleTimeout: time.Duration(getenvIntDefault("SESSION_IDLE_TIMEOUT_SECONDS", 1800)) * time.Second,
		LogLevel:           getenvDefault("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBBackend == "postgres" && cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("DB_DSN is required when DB_BACKEND=postgres")
	}
	if cfg.LLMProvider == "groq" && cfg.GroqAPIKey == "" {
		return Config{}, fmt.Errorf("GROQ_API_KEY is required when LLM_PROVIDER=groq")
	}
	if cfg.LLMProvider == "anthropic" && cfg.AnthropicAPIKey == "" {
		return Config{}, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
	}
	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvFloatDefault(key string, val float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return val
	}
	return n
}

func getenvBoolDefault(key string, val bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return val
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return val
	}
}
