package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":                   "www.example:9000",
		"database_dsn":                         "accounts.db",
		"secret_key":                           "my_secret_key",
		"access_token_validity_duration":       "15m",
		"refresh_token_validity_duration":      "720h",
		"verification_token_validity_duration": "24h",
		"reset_token_validity_duration":        "1h",
		"resend_cooldown":                      "5m",
		"smtp_host":                            "smtp.example.com",
		"smtp_port":                            587,
		"smtp_user":                            "mailer",
		"smtp_password":                        "password",
		"smtp_from":                            "noreply@example.com",
		"base_url":                             "https://example.com",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "accounts.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 720*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 24*time.Hour, cfg.VerificationTokenValidityDuration)
		assert.Equal(t, 1*time.Hour, cfg.ResetTokenValidityDuration)
		assert.Equal(t, 5*time.Minute, cfg.ResendCooldown)
		assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
		assert.Equal(t, 587, cfg.SMTPPort)
		assert.Equal(t, "mailer", cfg.SMTPUser)
		assert.Equal(t, "password", cfg.SMTPPassword)
		assert.Equal(t, "noreply@example.com", cfg.SMTPFrom)
		assert.Equal(t, "https://example.com", cfg.BaseURL)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP: "defaults:1234",
			DatabaseDSN:      "accounts.db",
			SecretKey:        "key",
			ResendCooldown:   2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "accounts.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.ResendCooldown)
	})
}
