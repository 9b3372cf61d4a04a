package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the insights service.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Transcription vendor
	TranscribeBaseURL string        `envconfig:"TRANSCRIBE_BASE_URL" default:"https://api.assemblyai.com/v2"`
	PollInterval      time.Duration `envconfig:"POLL_INTERVAL" default:"3s"`
	PollMaxAttempts   int           `envconfig:"POLL_MAX_ATTEMPTS" default:"0"` // 0 = poll until terminal
	PollTimeout       time.Duration `envconfig:"POLL_TIMEOUT" default:"0s"`     // 0 = no deadline; also bounds the POST /runs write timeout
	HTTPTimeout       time.Duration `envconfig:"HTTP_TIMEOUT" default:"120s"`

	// Insights vendors
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:""` // empty = SDK default endpoint
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	ClaudeBaseURL string `envconfig:"CLAUDE_BASE_URL" default:"https://api.anthropic.com/v1"`
	ClaudeModel   string `envconfig:"CLAUDE_MODEL" default:"claude-3-5-sonnet-20241022"`

	// Credential storage
	KeystoreDriver string `envconfig:"KEYSTORE_DRIVER" default:"sqlite"` // sqlite, memory
	KeystorePath   string `envconfig:"KEYSTORE_PATH" default:"supersoniq-keys.sqlite"`
	ProvidersFile  string `envconfig:"PROVIDERS_FILE" default:""`

	MetricsEnabled bool  `envconfig:"METRICS_ENABLED" default:"true"`
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"536870912"`
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.TranscribeBaseURL == "" {
		return fmt.Errorf("TRANSCRIBE_BASE_URL is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.PollMaxAttempts < 0 {
		return fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative")
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("POLL_TIMEOUT must not be negative")
	}
	switch c.KeystoreDriver {
	case "sqlite":
		if c.KeystorePath == "" {
			return fmt.Errorf("KEYSTORE_PATH is required for the sqlite keystore")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown KEYSTORE_DRIVER %q", c.KeystoreDriver)
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 512 << 20
	}
	return nil
}

// RunWriteTimeout is the server write timeout for synchronous runs. Without a
// poll bound a run may take arbitrarily long, so it is 0 (none). Otherwise it
// covers the poll bound plus one HTTP timeout each for upload, submit and the
// insights call.
func (c *Config) RunWriteTimeout() time.Duration {
	var poll time.Duration
	if c.PollMaxAttempts > 0 {
		n := time.Duration(c.PollMaxAttempts)
		poll = n*c.PollInterval + n*c.HTTPTimeout
	}
	if c.PollTimeout > 0 && (poll == 0 || c.PollTimeout < poll) {
		poll = c.PollTimeout
	}
	if poll == 0 {
		return 0
	}
	return poll + 3*c.HTTPTimeout + time.Minute
}
