package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "*", c.CorsOrigin)
	assert.Equal(t, AuthModeJWT, c.Auth.Mode)
	assert.Equal(t, "authenticated", c.Auth.Audience)
	assert.Equal(t, "openai/gpt-5-nano", c.LLM.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", c.LLM.BaseURL)
	assert.Equal(t, 60, c.RateLimit.WriteMax)
	assert.Equal(t, time.Minute, c.RateLimitWindow())
	assert.Equal(t, time.Minute, c.LLMTimeout())
	assert.Equal(t, "greenledger", c.Log.ServiceName)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Port: "9000"
DatabaseURL: postgres://file/ledger
Auth:
  Mode: remote
  SupabaseURL: https://project.supabase.co
  AnonKey: anon
RateLimit:
  WriteMax: 5
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("RATE_LIMIT_WRITE_MAX", "not-a-number")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", c.Port)
	assert.Equal(t, "postgres://file/ledger", c.DatabaseURL)
	assert.Equal(t, AuthModeRemote, c.Auth.Mode)
	assert.Equal(t, 5, c.RateLimit.WriteMax)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "postgres://x", Auth: AuthConf{Mode: AuthModeJWT, JWTSecret: "s"}}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"no database", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL is not set"},
		{"jwt without secret", func(c *Config) { c.Auth.JWTSecret = "" }, "SUPABASE_JWT_SECRET is not set"},
		{"remote without url", func(c *Config) { c.Auth.Mode = AuthModeRemote }, "SUPABASE_URL and SUPABASE_ANON_KEY are required for remote auth"},
		{"unknown mode", func(c *Config) { c.Auth.Mode = "basic" }, `unknown AUTH_MODE "basic"`},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, `invalid TIMEZONE "Mars/Olympus"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Config{Timezone: "America/Argentina/Buenos_Aires"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())
}
