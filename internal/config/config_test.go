package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LEAD_AMOUNT_THRESHOLD", "LEAD_INCOMPLETE_AFTER",
		"LEAD_SESSION_TTL", "NOTIFY_TIMEOUT", "NOTIFY_BACKEND", "CORS_ALLOWED_ORIGINS",
		"CORS_ALLOWED_HEADERS", "CORS_MAX_AGE",
		"GEMINI_API_KEY", "BEDROCK_MODEL_ID", "REDIS_ADDR", "KEEPALIVE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LeadAmountThreshold != 50000 {
		t.Fatalf("expected default threshold 50000, got %d", cfg.LeadAmountThreshold)
	}
	if cfg.LeadIncompleteAfter != 10*time.Minute {
		t.Fatalf("expected incomplete-after 10m, got %s", cfg.LeadIncompleteAfter)
	}
	if cfg.LeadSessionTTL != 2*time.Hour {
		t.Fatalf("expected session ttl 2h, got %s", cfg.LeadSessionTTL)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Fatalf("expected notify timeout 10s, got %s", cfg.NotifyTimeout)
	}
	if cfg.NotifyBackend != "auto" {
		t.Fatalf("expected notify backend auto, got %s", cfg.NotifyBackend)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS default, got %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.CORSAllowedHeaders) != 3 || cfg.CORSAllowedHeaders[1] != "X-Session-ID" {
		t.Fatalf("expected widget headers by default, got %v", cfg.CORSAllowedHeaders)
	}
	if cfg.CORSMaxAge != 10*time.Minute {
		t.Fatalf("expected CORS max age 10m, got %s", cfg.CORSMaxAge)
	}
	if cfg.AIConfigured() {
		t.Fatalf("expected AI to be unconfigured by default")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.KeepAliveInterval != 0 {
		t.Fatalf("expected keepalive disabled by default, got %s", cfg.KeepAliveInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LEAD_AMOUNT_THRESHOLD", "100_000")
	t.Setenv("LEAD_INCOMPLETE_AFTER", "15m")
	t.Setenv("LEAD_SESSION_TTL", "3h")
	t.Setenv("NOTIFY_BACKEND", " SMTP ")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://fortis-steel.ru, ,https://www.fortis-steel.ru")
	t.Setenv("CORS_ALLOWED_HEADERS", "Content-Type,X-Widget-Version")
	t.Setenv("CORS_MAX_AGE", "1h")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("KEEPALIVE_INTERVAL", "14m")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LeadAmountThreshold != 100000 {
		t.Fatalf("expected threshold override, got %d", cfg.LeadAmountThreshold)
	}
	if cfg.LeadIncompleteAfter != 15*time.Minute {
		t.Fatalf("expected incomplete-after override, got %s", cfg.LeadIncompleteAfter)
	}
	if cfg.LeadSessionTTL != 3*time.Hour {
		t.Fatalf("expected ttl override, got %s", cfg.LeadSessionTTL)
	}
	if cfg.NotifyBackend != "smtp" {
		t.Fatalf("expected normalized backend, got %q", cfg.NotifyBackend)
	}
	if cfg.SMTPPort != 2525 {
		t.Fatalf("expected smtp port override, got %d", cfg.SMTPPort)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if len(cfg.CORSAllowedHeaders) != 2 || cfg.CORSAllowedHeaders[1] != "X-Widget-Version" {
		t.Fatalf("expected header override, got %v", cfg.CORSAllowedHeaders)
	}
	if cfg.CORSMaxAge != time.Hour {
		t.Fatalf("expected CORS max age override, got %s", cfg.CORSMaxAge)
	}
	if !cfg.AIConfigured() {
		t.Fatalf("expected AI configured with gemini key")
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.KeepAliveInterval != 14*time.Minute {
		t.Fatalf("expected keepalive override, got %s", cfg.KeepAliveInterval)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LEAD_AMOUNT_THRESHOLD", "lots")
	t.Setenv("NOTIFY_TIMEOUT", "soon")
	cfg := Load()
	if cfg.LeadAmountThreshold != 50000 {
		t.Fatalf("expected default threshold on malformed input, got %d", cfg.LeadAmountThreshold)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Fatalf("expected default timeout on malformed input, got %s", cfg.NotifyTimeout)
	}
}
