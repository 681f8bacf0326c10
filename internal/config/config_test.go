package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "./data/chatbot.db", cfg.DBPath)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.RetrieveK)
	assert.Equal(t, "http://localhost:8000/api/schedule_call", cfg.SchedulerURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ChatModel)
	assert.Equal(t, "gemini-embedding-001", cfg.LLM.EmbedModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("RETRIEVE_K", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2, cfg.RetrieveK)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("RETRIEVE_K", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 4, cfg.RetrieveK)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:            "5000",
		DBPath:          "./data/chatbot.db",
		DirectoryDBPath: "./data/hr.db",
		LogFile:         "./data/request_log.json",
		SessionTTL:      time.Hour,
		RetrieveK:       4,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty directory path", func(c *Config) { c.DirectoryDBPath = "" }},
		{"empty log file", func(c *Config) { c.LogFile = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero retrieve k", func(c *Config) { c.RetrieveK = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadAdminDefaults(t *testing.T) {
	cfg, err := LoadAdmin()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "./data/calls.db", cfg.CallsDBPath)
}
