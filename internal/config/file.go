package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
// Pointer fields distinguish "unset" from zero values.
type FileConfig struct {
	Port                  string   `toml:"port"`
	RequestTimeoutMs      *int     `toml:"request_timeout_ms"`
	IdleTimeoutS          *int     `toml:"idle_timeout_s"`
	MaxMessagesPerRequest *int     `toml:"max_messages_per_request"`
	MaxMessageLength      *int     `toml:"max_message_length"`
	RequireAuth           *bool    `toml:"require_auth"`
	MasterAPIKey          string   `toml:"master_api_key"`
	PublicAPIKeys         []string `toml:"public_api_keys"`
	RateLimitEnabled      *bool    `toml:"rate_limit_enabled"`
	RateLimitMax          *int     `toml:"rate_limit_max"`
	RateLimitWindowMs     *int     `toml:"rate_limit_window_ms"`
	Providers             []string `toml:"providers"`
	SelectionStrategy     string   `toml:"selection_strategy"`
	StickyTTLMs           *int     `toml:"sticky_ttl_ms"`
	RetryProvider         string   `toml:"retry_provider"`
	RetryCount            *int     `toml:"retry_count"`
	RetryBackoffMs        *int     `toml:"retry_backoff_ms"`
	CORSOrigins           []string `toml:"cors_origins"`
	Debug                 *bool    `toml:"debug"`
	LogFormat             string   `toml:"log_format"`
	DBPath                string   `toml:"db_path"`
	LogRetentionDays      *int     `toml:"log_retention_days"`

	// Credentials and Models are keyed by provider name
	Credentials map[string]string `toml:"credentials"`
	Models      map[string]string `toml:"models"`
}

// configPathOverride is set by the --config flag.
var configPathOverride string

// SetConfigPath overrides the config file location.
func SetConfigPath(path string) {
	configPathOverride = path
}

// ConfigPath returns the path to the config file (~/.chatrelay/config.toml).
func ConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	return loadFileAt(ConfigPath())
}

func loadFileAt(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	defaultConfig := `# chatrelay configuration
# Environment variables take precedence over this file.
# port = "3000"
# selection_strategy = "round_robin"   # or "sticky"
# sticky_ttl_ms = 1800000
# providers = ["groq", "cerebras", "openrouter", "gemini", "huggingface"]

# retry_provider = "openrouter"
# retry_count = 3
# retry_backoff_ms = 1500

# require_auth = false
# rate_limit_max = 10
# rate_limit_window_ms = 60000
# cors_origins = ["*"]

# [credentials]
# groq = "gsk_..."
# openrouter = "sk-or-..."

# [models]
# cerebras = "llama3.1-8b"
# gemini = "gemini-3-flash-preview"
`

	return os.WriteFile(path, []byte(defaultConfig), 0600)
}
