package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultChatModel     = "deepseek/deepseek-r1:free"

	DisplayModeLatest      = "latest"
	DisplayModeLastSettled = "last_settled"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Chat completion
	OpenRouterAPIKey string
	OpenRouterURL    string
	ChatModel        string
	GeminiAPIKey     string
	AppURL           string
	AppTitle         string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Display slot
	DisplayMode string

	// Redis (optional)
	RedisURL string

	// Diagnostics (optional)
	DatabaseURL   string
	DiagnosticsDB string

	// Frontend
	FrontendURL string
}

// Load reads the server configuration. It panics when a required variable is missing.
func Load() *Config {
	cfg := loadCommon()
	cfg.SessionSecret = mustGetEnv("SESSION_SECRET")
	return cfg
}

// LoadCLI reads the configuration for the terminal client, which has no sessions.
func LoadCLI() *Config {
	return loadCommon()
}

func loadCommon() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		Env:           getEnvOrDefault("ENV", "development"),
		OpenRouterURL: getEnvOrDefault("OPENROUTER_URL", DefaultOpenRouterURL),
		ChatModel:     getEnvOrDefault("CHAT_MODEL", DefaultChatModel),
		GeminiAPIKey:  getEnvOrDefault("GEMINI_API_KEY", ""),
		AppURL:        getEnvOrDefault("APP_URL", ""),
		AppTitle:      getEnvOrDefault("APP_TITLE", ""),
		SessionTTL:    getEnvAsDurationOrDefault("SESSION_TTL", 24*time.Hour),
		DisplayMode:   displayModeOrDefault(getEnvOrDefault("DISPLAY_MODE", DisplayModeLatest)),
		RedisURL:      getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:   getEnvOrDefault("DATABASE_URL", ""),
		DiagnosticsDB: getEnvOrDefault("DIAGNOSTICS_DB", ""),
		FrontendURL:   getEnvOrDefault("FRONTEND_URL", "http://localhost:8080"),
	}

	if cfg.UsesGemini() {
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	} else {
		cfg.OpenRouterAPIKey = mustGetEnv("OPENROUTER_API_KEY")
	}

	return cfg
}

// UsesGemini reports whether the configured model is served by the Gemini SDK
// instead of the OpenRouter endpoint.
func (c *Config) UsesGemini() bool {
	return strings.HasPrefix(c.ChatModel, "gemini")
}

// LatestOnly reports whether only the newest submission may write the display slot.
func (c *Config) LatestOnly() bool {
	return c.DisplayMode != DisplayModeLastSettled
}

func displayModeOrDefault(mode string) string {
	switch mode {
	case DisplayModeLatest, DisplayModeLastSettled:
		return mode
	default:
		return DisplayModeLatest
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		// Plain integers are read as seconds
		if n := getEnvAsIntOrDefault(key, 0); n > 0 {
			return time.Duration(n) * time.Second
		}
		return defaultVal
	}
	return d
}
