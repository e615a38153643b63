package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.RetrievalTopK)
	assert.Equal(t, "9:00 AM", cfg.ClinicOpens)
	assert.Equal(t, "5:00 PM", cfg.ClinicCloses)
	assert.Equal(t, "stub", cfg.EmailProvider)
	assert.Nil(t, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EMAIL_PROVIDER", "SendGrid ")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RETRIEVAL_TOP_K", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sendgrid", cfg.EmailProvider)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "many")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("REDIS_TLS", "yep")

	cfg := Load()

	assert.Equal(t, 3, cfg.RetrievalTopK)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.RedisTLS)
}
