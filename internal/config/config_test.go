package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("SMTP_USERNAME", "relay-user")

	path := writeConfig(t, `
server:
  port: 9090
smtp:
  host: smtp.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 64, cfg.Notify.QueueSize)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "noreply@example.com", cfg.SMTP.From)
	assert.Equal(t, "relay-user", cfg.SMTP.Username)

	assert.False(t, cfg.LarkEnabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage: StorageConfig{Backend: "local", LocalDir: "data/objects"},
			SMTP:    SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"},
			Auth:    AuthConfig{JWTSecret: "secret"},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"missing local dir", func(c *Config) { c.Storage.LocalDir = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"gcs without bucket", func(c *Config) { c.Storage.Backend = "gcs"; c.Storage.GCSBucket = "" }},
		{"missing smtp host", func(c *Config) { c.SMTP.Host = "" }},
		{"missing smtp from", func(c *Config) { c.SMTP.From = "" }},
		{"lark app without chat", func(c *Config) { c.Lark.AppID = "cli_x" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	gcs := valid()
	gcs.Storage.Backend = "gcs"
	gcs.Storage.GCSBucket = "bucket"
	assert.NoError(t, gcs.Validate())
}

func TestLarkEnabled(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.LarkEnabled())
	cfg.Lark.AppID = "cli_x"
	assert.True(t, cfg.LarkEnabled())
}
