package config

import (
	"testing"
	"time"
)

func TestFromEnvRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected error without GEMINI_API_KEY")
	}

	t.Setenv("GEMINI_API_KEY", "key")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("default addr: got %q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 168*time.Hour {
		t.Fatalf("default session ttl: got %v", cfg.SessionTTL)
	}
	if cfg.MaxPromptChars != 12000 {
		t.Fatalf("default prompt budget: got %d", cfg.MaxPromptChars)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("UPSTREAM_RETRIES", "5")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("ttl override: got %v", cfg.SessionTTL)
	}
	if cfg.UpstreamRetries != 5 {
		t.Fatalf("retries override: got %d", cfg.UpstreamRetries)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors parse: got %v", cfg.CORSAllowedOrigins)
	}
}
