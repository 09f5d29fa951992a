package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/timeline"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, timeline.DefaultBands(), cfg.Bands)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "strata.db", cfg.Journal.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{"layers", "STRATA_BANDS_LAYERS", "3", func(c Config) any { return c.Bands.Layers }, 3},
		{"layer_width", "STRATA_BANDS_LAYER_WIDTH", "20", func(c Config) any { return c.Bands.LayerWidth }, uint32(20)},
		{"log level", "STRATA_LOG_LEVEL", "debug", func(c Config) any { return c.Log.Level }, "debug"},
		{"journal", "STRATA_JOURNAL_PATH", "/tmp/j.db", func(c Config) any { return c.Journal.Path }, "/tmp/j.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			v := viper.New()
			BindEnv(v)
			cfg, err := Load(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.field(cfg))
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	data := []byte("bands:\n  layers: 4\nlog:\n  level: warn\n  format: json\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Bands.Layers)
	assert.Equal(t, uint32(2048), cfg.Bands.LayerBase, "unset keys keep defaults")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero layers", "bands.layers", 0},
		{"bad level", "log.level", "loud"},
		{"bad format", "log.format", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
