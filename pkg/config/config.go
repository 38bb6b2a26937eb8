package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the config reads.
const EnvPrefix = "WOWPROFILE_"

// Config holds all configuration options for wowprofile
type Config struct {
	BattleNet     BattleNetConfig    `yaml:"battlenet" json:"battlenet"`
	Pacing        PacingConfig       `yaml:"pacing" json:"pacing"`
	Rarity        RarityConfig       `yaml:"rarity" json:"rarity"`
	Output        OutputConfig       `yaml:"output" json:"output"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Schedule      ScheduleConfig     `yaml:"schedule" json:"schedule"`
}

// BattleNetConfig identifies the API client and the character to profile.
type BattleNetConfig struct {
	ClientID     string        `yaml:"client_id" json:"client_id" env:"CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" json:"client_secret" env:"CLIENT_SECRET"`
	Region       string        `yaml:"region" json:"region" env:"REGION"`
	Realm        string        `yaml:"realm" json:"realm" env:"REALM"`
	Character    string        `yaml:"character" json:"character" env:"CHARACTER"`
	APIBaseURL   string        `yaml:"api_base_url" json:"api_base_url" env:"API_BASE_URL"`
	TokenURL     string        `yaml:"token_url" json:"token_url" env:"TOKEN_URL"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" env:"TIMEOUT"`
}

// PacingConfig controls how requests inside one collection are spaced.
type PacingConfig struct {
	Mode              string        `yaml:"mode" json:"mode" env:"PACING_MODE"`
	StaggerStep       time.Duration `yaml:"stagger_step" json:"stagger_step" env:"STAGGER_STEP"`
	SequentialDelay   time.Duration `yaml:"sequential_delay" json:"sequential_delay" env:"SEQUENTIAL_DELAY"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" json:"burst" env:"BURST"`
	MaxConcurrency    int           `yaml:"max_concurrency" json:"max_concurrency" env:"MAX_CONCURRENCY"`
}

// RarityConfig controls Wowhead scraping.
type RarityConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled" env:"RARITY_ENABLED"`
	BaseURL      string        `yaml:"base_url" json:"base_url" env:"RARITY_BASE_URL"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts" env:"RARITY_MAX_ATTEMPTS"`
	RetryDelay   time.Duration `yaml:"retry_delay" json:"retry_delay" env:"RARITY_RETRY_DELAY"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" env:"RARITY_TIMEOUT"`
	CacheEnabled bool          `yaml:"cache_enabled" json:"cache_enabled" env:"RARITY_CACHE_ENABLED"`
	CachePath    string        `yaml:"cache_path" json:"cache_path" env:"RARITY_CACHE_PATH"`
	CacheTTL     time.Duration `yaml:"cache_ttl" json:"cache_ttl" env:"RARITY_CACHE_TTL"`
}

// OutputConfig selects where and how the profile is written.
type OutputConfig struct {
	Path   string `yaml:"path" json:"path" env:"OUTPUT"`
	Format string `yaml:"format" json:"format" env:"FORMAT"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	File    string `yaml:"file" json:"file" env:"LOG_FILE"`
	NoColor bool   `yaml:"no_color" json:"no_color" env:"NO_COLOR"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" env:"NOTIFICATIONS_ENABLED"`
}

// ScheduleConfig holds the cron expression used by the schedule command.
type ScheduleConfig struct {
	Cron string `yaml:"cron" json:"cron" env:"SCHEDULE_CRON"`
}

// Output formats.
const (
	FormatTypeScript = "ts"
	FormatJSON       = "json"
	FormatYAML       = "yaml"
)

// Pacing modes.
const (
	PacingStagger = "stagger"
	PacingRate    = "rate"
)

// DefaultTokenURL is the Battle.net OAuth token endpoint.
const DefaultTokenURL = "https://oauth.battle.net/token"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BattleNet: BattleNetConfig{
			Region:   "us",
			TokenURL: DefaultTokenURL,
			Timeout:  30 * time.Second,
		},
		Pacing: PacingConfig{
			Mode:              PacingStagger,
			StaggerStep:       250 * time.Millisecond,
			SequentialDelay:   250 * time.Millisecond,
			RequestsPerSecond: 4,
			Burst:             1,
			MaxConcurrency:    0,
		},
		Rarity: RarityConfig{
			Enabled:     true,
			BaseURL:     "https://www.wowhead.com",
			MaxAttempts: 5,
			RetryDelay:  100 * time.Millisecond,
			Timeout:     30 * time.Second,
			CacheTTL:    7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Path:   "wowProfile.ts",
			Format: FormatTypeScript,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Schedule: ScheduleConfig{
			Cron: "0 */6 * * *",
		},
	}
}

// LoadFromEnv overrides fields whose WOWPROFILE_* variable is set.
// Unset variables leave the current value alone.
func (c *Config) LoadFromEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DataDir returns the per-user directory for wowprofile state such as
// the rarity cache.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wowprofile")
	}
	return ".wowprofile"
}

// DefaultConfigPath is where `config init` writes when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".wowprofile.yaml",
		".wowprofile.yml",
		filepath.Join(home, ".config", "wowprofile", "config.yaml"),
		filepath.Join(home, ".config", "wowprofile", "config.yml"),
		filepath.Join(home, ".wowprofile.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// CachePath resolves the rarity cache location, falling back to the data
// directory.
func (c *Config) CachePath() string {
	if c.Rarity.CachePath != "" {
		return c.Rarity.CachePath
	}
	return filepath.Join(DataDir(), "rarity.db")
}

// Validate checks the configuration and reports every problem at once.
// An unknown region is not an error; callers normalize it to "us".
func (c *Config) Validate() error {
	var errs []error

	if c.BattleNet.ClientID == "" {
		errs = append(errs, errors.New("battle.net client ID is required"))
	}
	if c.BattleNet.ClientSecret == "" {
		errs = append(errs, errors.New("battle.net client secret is required"))
	}
	if c.BattleNet.Realm == "" {
		errs = append(errs, errors.New("realm is required"))
	}
	if c.BattleNet.Character == "" {
		errs = append(errs, errors.New("character name is required"))
	}
	if c.BattleNet.Timeout < 0 {
		errs = append(errs, errors.New("battle.net timeout cannot be negative"))
	}

	switch c.Pacing.Mode {
	case PacingStagger:
		if c.Pacing.StaggerStep < 0 {
			errs = append(errs, errors.New("stagger step cannot be negative"))
		}
	case PacingRate:
		if c.Pacing.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("requests per second must be positive"))
		}
		if c.Pacing.Burst <= 0 {
			errs = append(errs, errors.New("burst must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown pacing mode %q", c.Pacing.Mode))
	}
	if c.Pacing.SequentialDelay < 0 {
		errs = append(errs, errors.New("sequential delay cannot be negative"))
	}
	if c.Pacing.MaxConcurrency < 0 {
		errs = append(errs, errors.New("max concurrency cannot be negative"))
	}

	if c.Rarity.Enabled {
		if c.Rarity.MaxAttempts <= 0 {
			errs = append(errs, errors.New("rarity max attempts must be positive"))
		}
		if c.Rarity.RetryDelay < 0 {
			errs = append(errs, errors.New("rarity retry delay cannot be negative"))
		}
		if c.Rarity.BaseURL == "" {
			errs = append(errs, errors.New("rarity base URL is required"))
		}
		if c.Rarity.CacheEnabled && c.Rarity.CacheTTL <= 0 {
			errs = append(errs, errors.New("rarity cache TTL must be positive"))
		}
	}

	switch c.Output.Format {
	case FormatTypeScript, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Masked returns a copy with secrets replaced, for display.
func (c *Config) Masked() Config {
	masked := *c
	masked.BattleNet.ClientSecret = maskSecret(c.BattleNet.ClientSecret)
	return masked
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

// MergeCommandLineFlags applies flag values that were explicitly set. Keys
// match the CLI flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	setString := func(key string, dst *string) {
		if v, ok := flags[key].(string); ok && v != "" {
			*dst = v
		}
	}

	setString("client-id", &c.BattleNet.ClientID)
	setString("client-secret", &c.BattleNet.ClientSecret)
	setString("region", &c.BattleNet.Region)
	setString("realm", &c.BattleNet.Realm)
	setString("character", &c.BattleNet.Character)
	setString("output", &c.Output.Path)
	setString("format", &c.Output.Format)
	setString("log-level", &c.Logging.Level)
	setString("cron", &c.Schedule.Cron)
	setString("pacing", &c.Pacing.Mode)

	if v, ok := flags["no-rarity"].(bool); ok && v {
		c.Rarity.Enabled = false
	}
	if v, ok := flags["rarity-cache"].(bool); ok && v {
		c.Rarity.CacheEnabled = true
	}
	if v, ok := flags["notifications"].(bool); ok && v {
		c.Notifications.Enabled = true
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.Logging.NoColor = true
	}
	if v, ok := flags["max-concurrency"].(int); ok && v > 0 {
		c.Pacing.MaxConcurrency = v
	}
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wowprofile.env"))
}

// Load reads configuration from all sources. Later sources win:
// defaults, config file, environment (including .env), flags.
// The result is not validated; callers decide when credentials are needed.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	LoadDotEnv()

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	return cfg, nil
}
