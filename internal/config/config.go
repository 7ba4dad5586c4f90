package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	SessionTTL         time.Duration
	AllowOrigins       []string
	LogstashTCPAddr    string
	LogLevel           string
	LocalCacheDriver   string
	LocalCachePath     string
	RemoteProbeTimeout time.Duration
	AppBaseURL         string
	FrontendHomeURL    string
	RegistrationPath   string
	InvitationTTL      time.Duration
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	SMTPFromName       string
	SMTPUseTLS         bool
}

// Load reads the server configuration, optionally seeded from a .env file.
// It panics when a value is malformed or JWT_SECRET is missing.
// DATABASE_URL is optional and its absence puts the app in local-only mode.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg, err := FromEnv(os.Getenv)
	if err == nil {
		err = cfg.RequireAuth()
	}
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadEnv is Load for tools that never issue sessions: JWT_SECRET may be
// absent and errors are returned instead of panicking.
func LoadEnv(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so it can be exercised
// without touching the real environment.
func FromEnv(lookup func(string) string) (Config, error) {
	env := envReader{lookup: lookup}
	cfg := Config{
		Port:               env.get("PORT", "8080"),
		DatabaseURL:        env.get("DATABASE_URL", ""),
		JWTSecret:          env.get("JWT_SECRET", ""),
		SessionTTL:         env.duration("SESSION_TTL", 24*time.Hour),
		AllowOrigins:       splitAndTrim(env.get("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:    env.get("LOGSTASH_TCP_ADDR", ""),
		LogLevel:           env.get("LOG_LEVEL", "info"),
		LocalCacheDriver:   strings.ToLower(env.get("LOCAL_CACHE_DRIVER", "file")),
		LocalCachePath:     env.get("LOCAL_CACHE_PATH", ".tripcache"),
		RemoteProbeTimeout: env.duration("REMOTE_PROBE_TIMEOUT", 2*time.Second),
		AppBaseURL:         env.get("APP_BASE_URL", "http://localhost:8080"),
		FrontendHomeURL:    env.get("FRONTEND_HOME_URL", ""),
		RegistrationPath:   env.get("REGISTRATION_PATH", "register"),
		InvitationTTL:      env.duration("INVITATION_TTL", 7*24*time.Hour),
		SMTPHost:           env.get("SMTP_HOST", ""),
		SMTPPort:           env.get("SMTP_PORT", "587"),
		SMTPUsername:       env.get("SMTP_USERNAME", ""),
		SMTPPassword:       env.get("SMTP_PASSWORD", ""),
		SMTPFrom:           env.get("SMTP_FROM", ""),
		SMTPFromName:       env.get("SMTP_FROM_NAME", "Trip Planner"),
		SMTPUseTLS:         env.get("SMTP_USE_TLS", "false") == "true",
	}
	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, nil
}

// RequireAuth reports the settings the HTTP server cannot start without.
func (c Config) RequireAuth() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing env: JWT_SECRET")
	}
	return nil
}

// RemoteEnabled reports whether a remote database is configured.
func (c Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

type envReader struct {
	lookup func(string) string
	err    error
}

func (e *envReader) get(k, d string) string {
	if v := strings.TrimSpace(e.lookup(k)); v != "" {
		return v
	}
	return d
}

func (e *envReader) duration(k string, d time.Duration) time.Duration {
	raw := e.get(k, "")
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		if e.err == nil {
			e.err = fmt.Errorf("invalid %s %q: expected a positive duration", k, raw)
		}
		return d
	}
	return v
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
