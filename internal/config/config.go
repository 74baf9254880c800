package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	UploadBasePath string
	FrontendDir    string // optional; page routes are only mounted when set

	JWTSecret  string
	SessionTTL time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	UpstreamTimeout time.Duration
	UpstreamRetries int

	MaxUploadBytes int64
	MaxPromptChars int

	RetentionWindow     time.Duration // 0 disables the sweeper
	RetentionSweepEvery time.Duration

	CORSAllowedOrigins []string
}

// FromEnv builds the config from the environment. The signing secret and the
// Gemini API key have no defaults: the server refuses to start without them.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    os.Getenv("DB_DSN"),

		UploadBasePath: envOr("UPLOAD_BASE_PATH", "./data/uploads"),
		FrontendDir:    os.Getenv("FRONTEND_DIR"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: envDuration("SESSION_TTL", 168*time.Hour),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		UpstreamTimeout: envDuration("UPSTREAM_TIMEOUT", 60*time.Second),
		UpstreamRetries: envInt("UPSTREAM_RETRIES", 2),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20<<20),
		MaxPromptChars: envInt("MAX_PROMPT_CHARS", 12000),

		RetentionWindow:     envDuration("RETENTION_WINDOW", 720*time.Hour),
		RetentionSweepEvery: envDuration("RETENTION_SWEEP_INTERVAL", time.Hour),

		CORSAllowedOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
