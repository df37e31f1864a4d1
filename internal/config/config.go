package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Selection strategies for the dispatcher.
const (
	StrategyRoundRobin = "round_robin"
	StrategySticky     = "sticky"
)

// DefaultProviders is the provider order used when none is configured.
var DefaultProviders = []string{"groq", "cerebras", "openrouter", "gemini", "huggingface"}

// providerEnv names the credential and model variables of each provider.
var providerEnv = map[string]struct{ key, model string }{
	"groq":        {"GROQ_API_KEY", "GROQ_MODEL"},
	"cerebras":    {"CEREBRAS_API_KEY", "CEREBRAS_MODEL"},
	"openrouter":  {"OPENROUTER_API_KEY", "OPENROUTER_MODEL"},
	"gemini":      {"GEMINI_API_KEY", "GEMINI_MODEL"},
	"huggingface": {"HF_TOKEN", "HF_MODEL"},
}

// ProviderSettings holds the credential and model override of one upstream.
type ProviderSettings struct {
	APIKey string
	Model  string
}

// Config holds application configuration loaded from environment and file.
// Priority: CLI flags → Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":3000")
	ServerPort string

	// RequestTimeout bounds the wait for upstream response headers
	RequestTimeout time.Duration
	IdleTimeout    time.Duration

	MaxMessagesPerRequest int
	MaxMessageLength      int

	RequireAuth   bool
	MasterAPIKey  string
	PublicAPIKeys []string

	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration

	// Providers is the ordered provider list; order drives round-robin and failover
	Providers        []string
	ProviderSettings map[string]ProviderSettings

	SelectionStrategy string
	StickyTTL         time.Duration

	// RetryProvider gets backoff retries on rate-limit failures
	RetryProvider  string
	RetryCount     int
	RetryBaseDelay time.Duration

	CORSOrigins []string

	Debug            bool
	LogFormat        string
	DBPath           string
	LogRetentionDays int
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fc, err := LoadFile()
	if err != nil || fc == nil {
		fc = &FileConfig{}
	}

	cfg := &Config{
		ServerPort:            ":" + getEnvOrFile("PORT", fc.Port, "3000"),
		RequestTimeout:        millis(getEnvIntOrFile("REQUEST_TIMEOUT_MS", fc.RequestTimeoutMs, 60000)),
		IdleTimeout:           time.Duration(getEnvIntOrFile("IDLE_TIMEOUT_S", fc.IdleTimeoutS, 120)) * time.Second,
		MaxMessagesPerRequest: getEnvIntOrFile("MAX_MESSAGES_PER_REQUEST", fc.MaxMessagesPerRequest, 50),
		MaxMessageLength:      getEnvIntOrFile("MAX_MESSAGE_LENGTH", fc.MaxMessageLength, 10000),
		RequireAuth:           getEnvBoolOrFile("REQUIRE_AUTH", fc.RequireAuth, false),
		MasterAPIKey:          getEnvOrFile("MASTER_API_KEY", fc.MasterAPIKey, ""),
		PublicAPIKeys:         getEnvListOrFile("PUBLIC_API_KEYS", fc.PublicAPIKeys, nil),
		RateLimitEnabled:      getEnvBoolOrFile("RATE_LIMIT_ENABLED", fc.RateLimitEnabled, true),
		RateLimitMax:          getEnvIntOrFile("RATE_LIMIT_MAX", fc.RateLimitMax, 10),
		RateLimitWindow:       millis(getEnvIntOrFile("RATE_LIMIT_WINDOW_MS", fc.RateLimitWindowMs, 60000)),
		Providers:             getEnvListOrFile("PROVIDERS", fc.Providers, DefaultProviders),
		ProviderSettings:      make(map[string]ProviderSettings, len(providerEnv)),
		SelectionStrategy:     normalizeStrategy(getEnvOrFile("SELECTION_STRATEGY", fc.SelectionStrategy, StrategyRoundRobin)),
		StickyTTL:             millis(getEnvIntOrFile("STICKY_CONVERSATION_TTL_MS", fc.StickyTTLMs, 30*60*1000)),
		RetryProvider:         getEnvOrFile("RETRY_PROVIDER", fc.RetryProvider, "openrouter"),
		RetryCount:            getEnvIntOrFile("OPENROUTER_RETRIES", fc.RetryCount, 3),
		RetryBaseDelay:        millis(getEnvIntOrFile("OPENROUTER_BACKOFF_MS", fc.RetryBackoffMs, 1500)),
		CORSOrigins:           getEnvListOrFile("CORS_ORIGINS", fc.CORSOrigins, []string{"*"}),
		Debug:                 getEnvBoolOrFile("DEBUG", fc.Debug, false),
		LogFormat:             strings.ToLower(getEnvOrFile("LOG_FORMAT", fc.LogFormat, "text")),
		DBPath:                getEnvOrFile("DB_PATH", fc.DBPath, DBPath()),
		LogRetentionDays:      getEnvIntOrFile("LOG_RETENTION_DAYS", fc.LogRetentionDays, 30),
	}

	for name, env := range providerEnv {
		cfg.ProviderSettings[name] = ProviderSettings{
			APIKey: getEnvOrFile(env.key, fc.Credentials[name], ""),
			Model:  getEnvOrFile(env.model, fc.Models[name], ""),
		}
	}

	return cfg
}

// Validate reports missing provider credentials and auth misconfiguration.
// Neither is fatal: providers without credentials fail each call instead.
func (c *Config) Validate() (missing []string, warnings []string) {
	for _, name := range c.Providers {
		env, ok := providerEnv[name]
		if !ok {
			warnings = append(warnings, "unknown provider in PROVIDERS: "+name)
			continue
		}
		if c.ProviderSettings[name].APIKey == "" {
			missing = append(missing, env.key)
		}
	}

	if c.RequireAuth && c.MasterAPIKey == "" {
		warnings = append(warnings, "REQUIRE_AUTH is true but MASTER_API_KEY is not set")
	}
	if c.RequireAuth && len(c.PublicAPIKeys) == 0 {
		warnings = append(warnings, "REQUIRE_AUTH is true but no PUBLIC_API_KEYS configured")
	}
	return missing, warnings
}

// Settings returns the credential and model for a provider.
func (c *Config) Settings(name string) ProviderSettings {
	return c.ProviderSettings[name]
}

func normalizeStrategy(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), StrategySticky) {
		return StrategySticky
	}
	return StrategyRoundRobin
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvIntOrFile returns env int, file int, or default (in priority order).
// Unparseable env values fall through to the file and default.
func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvListOrFile splits a comma-separated env value, or falls back to file and default.
func getEnvListOrFile(key string, fileValue, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return splitList(value)
	}
	if len(fileValue) > 0 {
		return fileValue
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
