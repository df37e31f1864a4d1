package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfigFile(t *testing.T, contents string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	}
	SetConfigPath(path)
	t.Cleanup(func() { SetConfigPath("") })

	// Empty values count as unset.
	for _, key := range []string{
		"PORT", "SELECTION_STRATEGY", "RATE_LIMIT_MAX", "PROVIDERS", "CORS_ORIGINS",
		"REQUIRE_AUTH", "GROQ_API_KEY", "GEMINI_API_KEY", "GROQ_MODEL", "OPENROUTER_RETRIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	useConfigFile(t, "")

	cfg := Load()
	assert.Equal(t, ":3000", cfg.ServerPort)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.MaxMessagesPerRequest)
	assert.Equal(t, 10000, cfg.MaxMessageLength)
	assert.False(t, cfg.RequireAuth)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, DefaultProviders, cfg.Providers)
	assert.Equal(t, StrategyRoundRobin, cfg.SelectionStrategy)
	assert.Equal(t, 30*time.Minute, cfg.StickyTTL)
	assert.Equal(t, "openrouter", cfg.RetryProvider)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.Equal(t, 1500*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	useConfigFile(t, `
port = "4000"
selection_strategy = "sticky"
rate_limit_max = 99
providers = ["gemini", "groq"]

[credentials]
gemini = "file-gemini"
groq = "file-groq"

[models]
groq = "file-model"
`)
	t.Setenv("PORT", "5000")
	t.Setenv("GROQ_API_KEY", "env-groq")
	t.Setenv("CORS_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("REQUIRE_AUTH", "true")

	cfg := Load()
	assert.Equal(t, ":5000", cfg.ServerPort)
	assert.Equal(t, StrategySticky, cfg.SelectionStrategy)
	assert.Equal(t, 99, cfg.RateLimitMax)
	assert.Equal(t, []string{"gemini", "groq"}, cfg.Providers)
	assert.Equal(t, "file-gemini", cfg.Settings("gemini").APIKey)
	assert.Equal(t, "env-groq", cfg.Settings("groq").APIKey)
	assert.Equal(t, "file-model", cfg.Settings("groq").Model)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.RequireAuth)
}

func TestLoad_UnknownStrategyFallsBack(t *testing.T) {
	useConfigFile(t, "")
	t.Setenv("SELECTION_STRATEGY", "random")
	assert.Equal(t, StrategyRoundRobin, Load().SelectionStrategy)

	t.Setenv("SELECTION_STRATEGY", "STICKY")
	assert.Equal(t, StrategySticky, Load().SelectionStrategy)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	useConfigFile(t, "")
	t.Setenv("OPENROUTER_RETRIES", "many")
	assert.Equal(t, 3, Load().RetryCount)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Providers:   []string{"groq", "gemini", "mystery"},
		RequireAuth: true,
		ProviderSettings: map[string]ProviderSettings{
			"groq": {APIKey: "k"},
		},
	}

	missing, warnings := cfg.Validate()
	assert.Equal(t, []string{"GEMINI_API_KEY"}, missing)
	assert.Contains(t, warnings, "unknown provider in PROVIDERS: mystery")
	assert.Contains(t, warnings, "REQUIRE_AUTH is true but MASTER_API_KEY is not set")
	assert.Contains(t, warnings, "REQUIRE_AUTH is true but no PUBLIC_API_KEYS configured")
}

func TestEnsureConfigFile(t *testing.T) {
	useConfigFile(t, "")
	require.NoError(t, EnsureConfigFile())

	fc, err := LoadFile()
	require.NoError(t, err)
	assert.Empty(t, fc.Port)
}
