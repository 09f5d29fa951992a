package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/strata/internal/config"
	"github.com/roach88/strata/internal/timeline"
)

// RootOptions holds global flags and the loaded configuration shared by all
// commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	Config config.Config
	Logger *slog.Logger

	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the strata CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "strata",
		Short: "strata - temporal layering for timelines",
		Long: `Strata places sources, effects and transitions of a linked video/audio
timeline into priority bands and keeps both compositions in lockstep.

Scenarios script an editing session in YAML. Runs can be journaled to
SQLite and replayed to verify that they are deterministic.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.loadConfig(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .strata.yaml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// loadConfig reads .strata.yaml (or --config), applies STRATA_* overrides
// and builds the logger.
func (o *RootOptions) loadConfig(logOut io.Writer) error {
	v := o.viper
	if v == nil {
		v = viper.New()
	}
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	} else {
		v.SetConfigName(".strata")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; a missing explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if o.ConfigFile != "" || !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "failed to read config", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg
	o.Logger = newLogger(logOut, cfg.Log, o.Verbose)
	return nil
}

// newLogger builds the slog logger for a command. --verbose forces debug.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// logger returns the configured logger, or one that discards everything
// when the command runs without the root (as in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bands returns the configured priority layout.
func (o *RootOptions) bands() timeline.Bands {
	if o.Config.Bands.Layers == 0 {
		return timeline.DefaultBands()
	}
	return o.Config.Bands
}

// journalPath returns flag when set, otherwise the configured journal.
func (o *RootOptions) journalPath(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.Journal.Path
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
