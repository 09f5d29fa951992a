// Package config loads strata runtime configuration from a config file,
// STRATA_* environment variables and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/strata/internal/timeline"
)

// EnvPrefix is the prefix of environment overrides, e.g. STRATA_LOG_LEVEL.
const EnvPrefix = "STRATA"

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig locates the SQLite journal.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// Config holds all runtime configuration.
type Config struct {
	Bands   timeline.Bands `mapstructure:"bands"`
	Log     LogConfig      `mapstructure:"log"`
	Journal JournalConfig  `mapstructure:"journal"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	b := timeline.DefaultBands()
	v.SetDefault("bands.global_size", b.GlobalSize)
	v.SetDefault("bands.simple_size", b.SimpleSize)
	v.SetDefault("bands.complex_size", b.ComplexSize)
	v.SetDefault("bands.transition_size", b.TransitionSize)
	v.SetDefault("bands.layer_base", b.LayerBase)
	v.SetDefault("bands.layer_width", b.LayerWidth)
	v.SetDefault("bands.layers", b.Layers)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("journal.path", "strata.db")
}

// BindEnv makes every key overridable through STRATA_* variables. Nested
// keys use underscores: bands.layers is STRATA_BANDS_LAYERS.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the priority layout and the log settings.
func (c Config) Validate() error {
	if err := c.Bands.Validate(); err != nil {
		return fmt.Errorf("invalid bands: %w", err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
