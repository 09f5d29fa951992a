package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/harness"
	"github.com/roach88/strata/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	NoJournal bool
	Watch     bool

	// Sessions overrides the session generator of journaled runs (for
	// testing). Defaults to UUIDv7 tokens.
	Sessions engine.SessionGenerator
}

// RunReport is the output of one scenario run.
type RunReport struct {
	Scenario string              `json:"scenario"`
	Session  string              `json:"session"`
	Pass     bool                `json:"pass"`
	Steps    []harness.StepTrace `json:"steps"`
	Errors   []string            `json:"errors,omitempty"`
	Digest   string              `json:"digest"`
	Journal  string              `json:"journal,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario against a fresh timeline",
		Long: `Run one scenario: declare its objects, apply its steps through the
engine and check its assertions.

Each run is journaled to SQLite under a new session token (see
journal.path in the config, or --db). Use --no-journal for a dry run.
With --watch the scenario re-runs every time the file changes.

Exit codes:
  0 - Every step and assertion passed
  1 - A step or assertion failed
  2 - Command error (unreadable scenario, database error, etc.)

Examples:
  strata run testdata/scenarios/ripple_insert.yaml
  strata run --db ./edits.db move.yaml --format json
  strata run --no-journal --watch move.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch {
				return watchScenario(opts, args[0], cmd)
			}
			return runScenarioFile(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not journal the run")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "re-run when the scenario file changes")

	return cmd
}

func runScenarioFile(ctx context.Context, opts *RunOptions, path string, w io.Writer) error {
	log := opts.logger()

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := []harness.Option{
		harness.WithBands(opts.bands()),
		harness.WithLogger(log),
	}

	journal := ""
	if !opts.NoJournal {
		journal = opts.journalPath(opts.Database)
	}
	if journal != "" {
		st, err := store.Open(journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		sessions := opts.Sessions
		if sessions == nil {
			sessions = engine.UUIDv7Generator{}
		}
		runOpts = append(runOpts, harness.WithStore(st), harness.WithSessionGenerator(sessions))
	}

	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	log.Info("running scenario", "scenario", scenario.Name, "journal", journal)

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	report := RunReport{
		Scenario: scenario.Name,
		Session:  result.Session,
		Pass:     result.Pass,
		Steps:    result.Steps,
		Errors:   result.Errors,
		Journal:  journal,
	}
	if n := len(result.Outcomes); n > 0 {
		report.Digest = result.Outcomes[n-1].Digest
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: report, Session: report.Session}
		if !report.Pass {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_SCENARIO_FAILED", Message: fmt.Sprintf("%d check(s) failed", len(report.Errors))}
		}
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		outputRunText(w, report, opts.Verbose)
	}

	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func outputRunText(w io.Writer, report RunReport, verbose bool) {
	fmt.Fprintf(w, "Scenario: %s\n", report.Scenario)
	fmt.Fprintf(w, "Session:  %s\n", report.Session)
	if report.Journal != "" {
		fmt.Fprintf(w, "Journal:  %s\n", report.Journal)
	}
	fmt.Fprintln(w)

	for _, step := range report.Steps {
		status := step.Status
		if step.ErrorCode != "" {
			status = step.ErrorCode
		}
		fmt.Fprintf(w, "  [%d] %s %s -> %s\n", step.Seq, step.Composition, step.Op, status)
		if !verbose {
			continue
		}
		for _, n := range step.Notifications {
			fmt.Fprintf(w, "       %s %s", n.Composition, n.Event)
			if n.Object != "" {
				fmt.Fprintf(w, " %s", n.Object)
			}
			if n.Condensed != nil {
				fmt.Fprintf(w, " %v", n.Condensed)
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)

	if report.Pass {
		fmt.Fprintf(w, "%s %s passed (digest %s)\n", mark(true), report.Scenario, shortDigest(report.Digest))
		return
	}
	fmt.Fprintf(w, "%s %s failed\n", mark(false), report.Scenario)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// watchScenario runs the scenario, then re-runs it on every change until
// interrupted. Failed runs are reported and watching continues.
func watchScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	log := opts.logger()
	w := cmd.OutOrStdout()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	watcher, err := NewScenarioWatcher(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to watch scenario", err)
	}
	if err := watcher.Start(); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch scenario", err)
	}
	defer watcher.Stop()

	rerun := func() {
		if err := runScenarioFile(ctx, opts, path, w); err != nil && GetExitCode(err) == ExitCommandError {
			fmt.Fprintf(w, "%s %v\n", mark(false), err)
		}
	}

	rerun()
	fmt.Fprintf(w, "Watching %s. Press Ctrl-C to stop.\n", path)

	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil
		case _, ok := <-watcher.Changes:
			if !ok {
				return nil
			}
			log.Debug("scenario changed", "path", path)
			fmt.Fprintln(w)
			rerun()
		}
	}
}

// shortDigest abbreviates a snapshot digest for text output.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
