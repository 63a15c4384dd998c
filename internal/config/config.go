// =============================================================================
// Sales Report Bot - Configuration Module
// =============================================================================
//
// This module turns the layered configuration assembled by viper (config
// file, REPORTBOT_* environment variables and command-line flags) into a
// validated MainConfig.
//
// CONFIGURATION SOURCES (highest priority first):
//   1. Command-line flags bound in cmd/
//   2. Environment variables, prefixed REPORTBOT_ (REPORTBOT_LOG_LEVEL, ...)
//   3. config.yaml
//   4. Defaults applied by applyMainConfigDefaults
//
// The Telegram token additionally falls back to the plain TOKEN environment
// variable.
//
// EXAMPLE config.yaml:
//
//   telegram:
//     token: "123:abc"
//     poll_timeout: 60
//   catalog:
//     file: ./catalog.yaml
//   export:
//     currency: тг
//     timezone: Asia/Almaty
//     spool_dir: ./spool
//   log:
//     level: info
//     format: console
//   metrics:
//     addr: ":9090"
//   nats:
//     url: nats://127.0.0.1:4222
//     subject: reportbot.in
//     reply_prefix: reportbot.out
//   max_concurrency: 8
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "REPORTBOT"

// TokenEnv is the legacy environment variable holding the Telegram token.
const TokenEnv = "TOKEN"

// ErrMissingToken is returned by RequireToken when no token is configured.
var ErrMissingToken = errors.New("telegram token is not set (config telegram.token or env TOKEN)")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Export   ExportConfig   `mapstructure:"export" yaml:"export"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	NATS     NATSConfig     `mapstructure:"nats" yaml:"nats"`

	// MaxConcurrency is the number of dispatcher workers. Messages of one
	// user are always handled by the same worker.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	// Token is the bot API token.
	Token string `mapstructure:"token" yaml:"token"`

	// PollTimeout is the long-poll timeout in seconds.
	// Default: 60
	PollTimeout int `mapstructure:"poll_timeout" yaml:"poll_timeout"`

	// Debug enables request logging in the bot API client.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// CatalogConfig selects the product catalog.
type CatalogConfig struct {
	// File is a .yaml, .csv or .xlsx catalog. Empty selects the built-in
	// catalog.
	File string `mapstructure:"file" yaml:"file"`
}

// ExportConfig controls report rendering and delivery.
type ExportConfig struct {
	// Currency is appended to prices and amounts.
	// Default: "тг"
	Currency string `mapstructure:"currency" yaml:"currency"`

	// Timezone is an IANA zone name for report timestamps. Empty means local
	// time.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// SpoolDir enables writing workbooks to disk before upload.
	SpoolDir string `mapstructure:"spool_dir" yaml:"spool_dir"`

	// ConsoleDir is where the console transport stores delivered workbooks.
	// Default: "./reports"
	ConsoleDir string `mapstructure:"console_dir" yaml:"console_dir"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "console" or "json".
	// Default: "console"
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics. Empty disables the endpoint.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// NATSConfig configures the NATS bus transport.
type NATSConfig struct {
	// URL of the NATS server.
	// Default: nats.DefaultURL
	URL string `mapstructure:"url" yaml:"url"`

	// Subject receives inbound messages.
	// Default: "reportbot.in"
	Subject string `mapstructure:"subject" yaml:"subject"`

	// ReplyPrefix prefixes outbound subjects: <reply_prefix>.<user_id>.
	// Default: "reportbot.out"
	ReplyPrefix string `mapstructure:"reply_prefix" yaml:"reply_prefix"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load decodes v into a MainConfig, applies defaults and validates it.
//
// PARAMETERS:
//   - v: A viper instance with the config file, environment and flags
//     already attached.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if decoding or validation fails.
func Load(v *viper.Viper) (*MainConfig, error) {
	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = os.Getenv(TokenEnv)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// NewViper returns a viper instance wired for the REPORTBOT_ environment.
// Nested keys map to variables with '.' replaced by '_'.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{
		"telegram.token", "telegram.poll_timeout", "telegram.debug",
		"catalog.file",
		"export.currency", "export.timezone", "export.spool_dir", "export.console_dir",
		"log.level", "log.format",
		"metrics.addr",
		"nats.url", "nats.subject", "nats.reply_prefix",
		"max_concurrency",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// ReadFile attaches path to v and reads it. A missing file is not an error
// when path is empty and the default config.yaml is searched instead.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(cfg *MainConfig) {
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = 60
	}
	if cfg.Export.Currency == "" {
		cfg.Export.Currency = "тг"
	}
	if cfg.Export.ConsoleDir == "" {
		cfg.Export.ConsoleDir = "./reports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://127.0.0.1:4222"
	}
	if cfg.NATS.Subject == "" {
		cfg.NATS.Subject = "reportbot.in"
	}
	if cfg.NATS.ReplyPrefix == "" {
		cfg.NATS.ReplyPrefix = "reportbot.out"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
}

// validateMainConfig validates the main configuration. All problems are
// reported together.
func validateMainConfig(cfg *MainConfig) error {
	var errs []error

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: invalid value %q", cfg.Log.Level))
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: invalid value %q", cfg.Log.Format))
	}

	if cfg.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("max_concurrency: must be at least 1, got %d", cfg.MaxConcurrency))
	}
	if cfg.Telegram.PollTimeout < 0 {
		errs = append(errs, fmt.Errorf("telegram.poll_timeout: must not be negative, got %d", cfg.Telegram.PollTimeout))
	}

	if _, err := cfg.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Location returns the report time zone. Nil means the local zone.
func (c *MainConfig) Location() (*time.Location, error) {
	if c.Export.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return nil, fmt.Errorf("export.timezone: %w", err)
	}
	return loc, nil
}

// RequireToken returns the Telegram token or ErrMissingToken.
func (c *MainConfig) RequireToken() (string, error) {
	if c.Telegram.Token == "" {
		return "", ErrMissingToken
	}
	return c.Telegram.Token, nil
}
