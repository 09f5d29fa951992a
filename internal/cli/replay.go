package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// SessionReplay holds the replay result for a single session.
type SessionReplay struct {
	Session       string   `json:"session"`
	Objects       int      `json:"objects"`
	Commands      int      `json:"commands"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []SessionReplay `json:"sessions"`
	TotalSessions    int             `json:"total_sessions"`
	AllDeterministic bool            `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Rebuild each journaled session on a fresh timeline and compare every
command's outcome with the one recorded: status, error code, command ID
and snapshot digest.

Exit codes:
  0 - All sessions replayed identically
  1 - A session diverged from its journal
  2 - Command error (database not found, etc.)

Examples:
  strata replay --db ./strata.db
  strata replay --db ./strata.db --session 0192...
  strata replay --db ./strata.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")

	return cmd
}

func runReplay(ctx context.Context, opts *ReplayOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := opts.journalPath(opts.Database)
	if path == "" {
		return NewExitError(ExitCommandError, "no journal: pass --db or set journal.path")
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]SessionReplay, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(w, result)
		}
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}

	for _, session := range sessions {
		opts.logger().Debug("replaying session", "session", session)
		rr, err := engine.Replay(ctx, st, session, opts.bands(), opts.logger())
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", session), err)
		}

		sr := SessionReplay{
			Session:       session,
			Objects:       rr.Objects,
			Commands:      rr.Commands,
			Deterministic: rr.OK(),
		}
		for _, m := range rr.Mismatches {
			sr.Mismatches = append(sr.Mismatches, m.String())
		}
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
		result.Sessions = append(result.Sessions, sr)
	}

	if opts.Format == "json" {
		return outputReplayJSON(w, result)
	}
	return outputReplayText(w, result)
}

func outputReplayJSON(w io.Writer, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_REPLAY_DIVERGED",
			Message: "replay diverged from the journal",
		}
	}
	if err := writeJSON(w, response); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	return nil
}

func outputReplayText(w io.Writer, result ReplayResult) error {
	for _, sr := range result.Sessions {
		fmt.Fprintf(w, "%s %s (%d objects, %d commands)\n", mark(sr.Deterministic), sr.Session, sr.Objects, sr.Commands)
		for _, m := range sr.Mismatches {
			fmt.Fprintf(w, "  %s\n", m)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	fmt.Fprintln(w, "✓ All sessions deterministic")
	return nil
}
