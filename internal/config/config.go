// Package config loads glint settings from the config file and the
// environment. Precedence: environment over file over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "GLINT"

	// DefaultModel is the extraction model used when none is configured.
	DefaultModel = "claude-3-5-haiku-latest"

	DefaultCacheTTL   = 5 * time.Minute
	DefaultBatchDelay = 500 * time.Millisecond
)

// Config is the resolved configuration for one invocation.
type Config struct {
	TrackerEndpoint string
	TrackerAPIKey   string
	AnthropicAPIKey string
	Model           string

	DefaultTeam     string
	DefaultPriority *int // nil when unset

	// EnableContext controls whether workspace metadata is embedded in the
	// extraction prompt.
	EnableContext bool

	CacheTTL   time.Duration
	BatchDelay time.Duration
}

// Error reports a missing or invalid configuration value. Commands map
// it to the configuration exit code.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// RequireTracker checks that the tracker API can be reached at all.
func (c *Config) RequireTracker() error {
	if c.TrackerAPIKey == "" {
		return &Error{Key: "tracker.api_key", Reason: "not set (set GLINT_TRACKER_API_KEY or run `glint config set tracker.api_key ...`)"}
	}
	return nil
}

// RequireAnthropic checks that extraction can run.
func (c *Config) RequireAnthropic() error {
	if c.AnthropicAPIKey == "" {
		return &Error{Key: "anthropic.api_key", Reason: "not set (set ANTHROPIC_API_KEY or run `glint config set anthropic.api_key ...`)"}
	}
	return nil
}

// Dir returns the glint config directory, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(base, "glint"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the default config file (if present) plus the environment.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the given config file (if present) plus the environment.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known environment names win over file values but lose to the
	// GLINT_-prefixed forms bound first.
	_ = v.BindEnv("tracker.api_key", "GLINT_TRACKER_API_KEY", "LINEAR_API_KEY")
	_ = v.BindEnv("anthropic.api_key", "GLINT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	v.SetDefault("model", DefaultModel)
	v.SetDefault("context.enabled", true)
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())
	v.SetDefault("batch.delay", DefaultBatchDelay.String())

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{
		TrackerEndpoint: v.GetString("tracker.endpoint"),
		TrackerAPIKey:   v.GetString("tracker.api_key"),
		AnthropicAPIKey: v.GetString("anthropic.api_key"),
		Model:           v.GetString("model"),
		DefaultTeam:     v.GetString("defaults.team"),
		EnableContext:   v.GetBool("context.enabled"),
	}

	if v.IsSet("defaults.priority") {
		p := v.GetInt("defaults.priority")
		if p < 0 || p > 4 {
			return nil, &Error{Key: "defaults.priority", Reason: fmt.Sprintf("%d is out of range (0-4)", p)}
		}
		cfg.DefaultPriority = &p
	}

	cfg.CacheTTL = v.GetDuration("cache.ttl")
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	cfg.BatchDelay = v.GetDuration("batch.delay")
	if cfg.BatchDelay < 0 {
		return nil, &Error{Key: "batch.delay", Reason: "must not be negative"}
	}

	return cfg, nil
}
