package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrMissingCredential means no API key was found in flags, env or .env.
	ErrMissingCredential = errors.New("ElevenLabs API key required")
	// ErrMalformedCredential means the API key does not look like a key.
	ErrMalformedCredential = errors.New("ELEVENLABS_API_KEY looks malformed")
)

var (
	softKeyPattern   = regexp.MustCompile(`^sk_[A-Za-z0-9_-]{8,}$`)
	strictKeyPattern = regexp.MustCompile(`^sk_[A-Za-z0-9]{16,}$`)
)

// Truthy is a boolean env value that accepts 1/true/yes/on (any case) as
// true and anything else, including empty, as false.
type Truthy bool

func (t *Truthy) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "1", "true", "yes", "on":
		*t = true
	default:
		*t = false
	}
	return nil
}

type S3Config struct {
	Bucket    string `env:"BUCKET"`
	Endpoint  string `env:"ENDPOINT"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Prefix    string `env:"PREFIX"`
}

// Enabled returns true if S3 archiving is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type Config struct {
	APIKey      string `env:"ELEVENLABS_API_KEY"`
	STTEndpoint string `env:"ELEVENLABS_STT_ENDPOINT" envDefault:"https://api.elevenlabs.io/v1/speech-to-text"`
	BaseURL     string `env:"ELEVENLABS_BASE_URL" envDefault:"https://api.elevenlabs.io"`
	STTModel    string `env:"ELEVENLABS_STT_MODEL" envDefault:"scribe_v2"`
	TTSModel    string `env:"ELEVENLABS_TTS_MODEL"`
	UseSDK      Truthy `env:"ELEVENLABS_USE_SDK" envDefault:"true"`
	ForceHTTP   Truthy `env:"ELEVENLABS_FORCE_HTTP"`
	HTTPAuth    string `env:"ELEVENLABS_HTTP_AUTH" envDefault:"bearer"`

	RetryAttempts uint64        `env:"RETRY_ATTEMPTS" envDefault:"4"`
	RetryBase     time.Duration `env:"RETRY_BASE" envDefault:"1s"`
	RetryCap      time.Duration `env:"RETRY_CAP" envDefault:"16s"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsFile string `env:"METRICS_FILE"`

	// Archive: copies of produced transcripts and audio.
	ArchiveDir string   `env:"ARCHIVE_DIR"`
	S3         S3Config `envPrefix:"S3_"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile     string
	APIKey      string
	LogLevel    string
	STTEndpoint string
	BaseURL     string
	Model       string
	ForceHTTP   bool
	MetricsFile string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.APIKey != "" {
		cfg.APIKey = overrides.APIKey
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.STTEndpoint != "" {
		cfg.STTEndpoint = overrides.STTEndpoint
	}
	if overrides.BaseURL != "" {
		cfg.BaseURL = overrides.BaseURL
	}
	if overrides.Model != "" {
		cfg.STTModel = overrides.Model
	}
	if overrides.ForceHTTP {
		cfg.ForceHTTP = true
	}
	if overrides.MetricsFile != "" {
		cfg.MetricsFile = overrides.MetricsFile
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.RetryAttempts == 0 {
		return nil, errors.New("RETRY_ATTEMPTS must be at least 1")
	}
	return cfg, nil
}

// CheckCredential validates the API key before any network call. A missing
// key is always ErrMissingCredential. strict selects the tighter pattern
// used by transcription; otherwise the looser synthesis pattern applies.
// A mismatch wraps ErrMalformedCredential; callers decide whether it is fatal.
func (c *Config) CheckCredential(strict bool) error {
	if c.APIKey == "" {
		return ErrMissingCredential
	}
	pattern := softKeyPattern
	if strict {
		pattern = strictKeyPattern
	}
	if !pattern.MatchString(c.APIKey) {
		return fmt.Errorf("%w: expected a key matching %s", ErrMalformedCredential, pattern)
	}
	return nil
}
