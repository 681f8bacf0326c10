// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration for the chatbot server.
type Config struct {
	Port            string
	DBPath          string
	DirectoryDBPath string
	DocsDir         string
	LogFile         string
	SessionTTL      time.Duration
	RetrieveK       int
	SchedulerURL    string
	AllowedOrigins  []string
	LLM             LLMConfig
}

// LLMConfig controls the generation and embedding backends.
type LLMConfig struct {
	OpenAIAPIKey string
	OpenAIBase   string
	ChatModel    string
	GeminiAPIKey string
	EmbedModel   string
	Timeout      time.Duration
}

// AdminConfig holds configuration for the callback-management service.
type AdminConfig struct {
	Port        string
	CallsDBPath string
	LogFile     string
}

// Load reads server configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "5000"),
		DBPath:          getEnv("DB_PATH", "./data/chatbot.db"),
		DirectoryDBPath: getEnv("DIRECTORY_DB_PATH", "./data/hr.db"),
		DocsDir:         getEnv("DOCS_DIR", "./docs"),
		LogFile:         getEnv("LOG_FILE", "./data/request_log.json"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 12*time.Hour),
		RetrieveK:       getEnvInt("RETRIEVE_K", 4),
		SchedulerURL:    getEnv("SCHEDULER_URL", "http://localhost:8000/api/schedule_call"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LLM: LLMConfig{
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIBase:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			ChatModel:    getEnv("CHAT_MODEL", "gpt-4o-mini"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			EmbedModel:   getEnv("EMBED_MODEL", "gemini-embedding-001"),
			Timeout:      getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadAdmin reads configuration for the callback-management service.
func LoadAdmin() (*AdminConfig, error) {
	cfg := &AdminConfig{
		Port:        getEnv("ADMIN_PORT", "8000"),
		CallsDBPath: getEnv("CALLS_DB_PATH", "./data/calls.db"),
		LogFile:     getEnv("LOG_FILE", "./data/request_log.json"),
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("ADMIN_PORT cannot be empty")
	}
	if cfg.CallsDBPath == "" {
		return nil, fmt.Errorf("CALLS_DB_PATH cannot be empty")
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.DirectoryDBPath == "" {
		return fmt.Errorf("DIRECTORY_DB_PATH cannot be empty")
	}
	if c.LogFile == "" {
		return fmt.Errorf("LOG_FILE cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.RetrieveK <= 0 {
		return fmt.Errorf("RETRIEVE_K must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
