package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)
	require.NoError(t, cfg.RequireAuth())

	require.Equal(t, "8080", cfg.Port)
	require.False(t, cfg.RemoteEnabled())
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 7*24*time.Hour, cfg.InvitationTTL)
	require.Equal(t, 2*time.Second, cfg.RemoteProbeTimeout)
	require.Equal(t, []string{"*"}, cfg.AllowOrigins)
	require.Equal(t, "file", cfg.LocalCacheDriver)
	require.Equal(t, "register", cfg.RegistrationPath)
	require.False(t, cfg.SMTPUseTLS)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"JWT_SECRET":         "s3cret",
		"DATABASE_URL":       "postgres://trips@db/trips",
		"ALLOW_ORIGINS":      "https://a.example, ,https://b.example",
		"INVITATION_TTL":     "48h",
		"LOCAL_CACHE_DRIVER": "SQLite",
		"SMTP_USE_TLS":       "true",
	}))
	require.NoError(t, err)

	require.True(t, cfg.RemoteEnabled())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	require.Equal(t, 48*time.Hour, cfg.InvitationTTL)
	require.Equal(t, "sqlite", cfg.LocalCacheDriver)
	require.True(t, cfg.SMTPUseTLS)
}

func TestFromEnvErrors(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{}))
	require.NoError(t, err)
	require.ErrorContains(t, cfg.RequireAuth(), "JWT_SECRET")

	_, err = FromEnv(lookupFrom(map[string]string{"JWT_SECRET": "x", "SESSION_TTL": "soon"}))
	require.ErrorContains(t, err, "SESSION_TTL")

	_, err = FromEnv(lookupFrom(map[string]string{"JWT_SECRET": "x", "INVITATION_TTL": "-1h"}))
	require.ErrorContains(t, err, "INVITATION_TTL")
}
