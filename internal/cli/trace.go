package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database    string
	Session     string
	Composition string // optional - filter notifications to one composition
}

// TraceEntry is one journaled step: an object definition or a command with
// its outcome and the notifications it caused.
type TraceEntry struct {
	Seq           int64             `json:"seq"`
	Type          string            `json:"type"` // "object" or "command"
	ID            string            `json:"id"`
	Object        *ir.ObjectDef     `json:"object,omitempty"`
	Command       *ir.Command       `json:"command,omitempty"`
	Outcome       *ir.Outcome       `json:"outcome,omitempty"`
	Notifications []ir.Notification `json:"notifications,omitempty"`
}

// TraceStats holds summary statistics for the session.
type TraceStats struct {
	Objects       int `json:"objects"`
	Commands      int `json:"commands"`
	Failed        int `json:"failed"`
	Notifications int `json:"notifications"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	Sessions []string     `json:"sessions,omitempty"`
	Journal  []TraceEntry `json:"journal"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journal of a session",
		Long: `Show what a journaled session did, step by step: the objects it
declared, each command with its outcome, and the notifications every
command delivered in order.

Without --session, lists the sessions in the journal.

Examples:
  strata trace --db ./strata.db
  strata trace --db ./strata.db --session 0192...
  strata trace --db ./strata.db --session 0192... --composition audio --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace")
	cmd.Flags().StringVar(&opts.Composition, "composition", "", "only show notifications of this composition")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, w io.Writer) error {
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

	if opts.Session == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		return outputSessions(w, opts.Format, sessions)
	}

	journal, err := st.ReadJournal(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	notes, err := st.ReadNotifications(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read notifications", err)
	}

	result := buildTrace(opts.Session, journal, notes, opts.Composition)
	if len(result.Journal) == 0 {
		if opts.Format == "json" {
			return writeJSON(w, CLIResponse{Status: "ok", Data: result, Session: opts.Session})
		}
		fmt.Fprintf(w, "No journal entries for session: %s\n", opts.Session)
		return nil
	}

	if opts.Format == "json" {
		return writeJSON(w, CLIResponse{Status: "ok", Data: result, Session: opts.Session})
	}
	outputTraceText(w, result, opts.Verbose)
	return nil
}

// buildTrace attaches each notification to the command that caused it.
func buildTrace(session string, journal []store.JournalEntry, notes []ir.Notification, composition string) TraceResult {
	byCommand := make(map[string][]ir.Notification)
	for _, n := range notes {
		if composition != "" && n.Composition != composition {
			continue
		}
		byCommand[n.CommandID] = append(byCommand[n.CommandID], n)
	}

	result := TraceResult{Session: session, Journal: make([]TraceEntry, 0, len(journal))}
	for _, entry := range journal {
		te := TraceEntry{Seq: entry.Seq, Type: entry.Type.String(), ID: entry.ID}
		switch entry.Type {
		case store.EntryObject:
			if entry.Object == nil {
				continue
			}
			def := entry.Object.Def
			te.Object = &def
			result.Stats.Objects++
		case store.EntryCommand:
			if entry.Command == nil {
				continue
			}
			te.Command = entry.Command
			te.Outcome = entry.Outcome
			te.Notifications = byCommand[entry.ID]
			result.Stats.Commands++
			result.Stats.Notifications += len(te.Notifications)
			if entry.Outcome != nil && !entry.Outcome.OK() {
				result.Stats.Failed++
			}
		}
		result.Journal = append(result.Journal, te)
	}
	return result
}

func outputSessions(w io.Writer, format string, sessions []string) error {
	if format == "json" {
		return writeJSON(w, CLIResponse{Status: "ok", Data: TraceResult{Sessions: sessions, Journal: []TraceEntry{}}})
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions in journal.")
		return nil
	}
	fmt.Fprintln(w, "Sessions:")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s\n", s)
	}
	return nil
}

func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintf(w, "Trace for session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Journal ===")
	for _, te := range result.Journal {
		switch te.Type {
		case "object":
			fmt.Fprintf(w, "  [%d] DEF %s %s (start %d, duration %d)\n",
				te.Seq, te.Object.Kind, te.Object.ID, te.Object.Start, te.Object.Duration)
		case "command":
			fmt.Fprintf(w, "  [%d] %s %s %s -> %s\n",
				te.Seq, te.Command.Composition, te.Command.Op, formatArgs(te.Command.Args), outcomeStatus(te.Outcome))
			if verbose {
				fmt.Fprintf(w, "       ID: %s\n", shortDigest(te.ID))
				if te.Outcome != nil {
					fmt.Fprintf(w, "       Digest: %s\n", shortDigest(te.Outcome.Digest))
				}
			}
			for _, n := range te.Notifications {
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
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Objects:       %d\n", result.Stats.Objects)
	fmt.Fprintf(w, "  Commands:      %d\n", result.Stats.Commands)
	fmt.Fprintf(w, "  Failed:        %d\n", result.Stats.Failed)
	fmt.Fprintf(w, "  Notifications: %d\n", result.Stats.Notifications)
}

func outcomeStatus(out *ir.Outcome) string {
	switch {
	case out == nil:
		return "pending"
	case out.OK():
		return out.Status
	default:
		return out.ErrorCode
	}
}

// formatArgs renders command arguments as canonical JSON, which keeps key
// order deterministic.
func formatArgs(args ir.Object) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
