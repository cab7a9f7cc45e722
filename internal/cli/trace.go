package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaoxiaojun/rusty-asm/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - show one run in detail
}

// TraceResult holds the trace output.
type TraceResult struct {
	Runs  []store.Run `json:"runs"`
	Stats TraceStats  `json:"stats"`
}

// TraceStats holds summary statistics across the listed runs.
type TraceStats struct {
	TotalRuns int `json:"total_runs"`
	Failed    int `json:"failed"`
	AsmBlocks int `json:"asm_blocks"`
	Warnings  int `json:"warnings"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List recorded rewrite runs",
		Long: `List runs recorded in the rewrite cache, newest first.

Each run shows the source, dialect, status, and counts. Use --run to
show a single run in detail.

Examples:
  rustyasm trace --db ./rustyasm.db
  rustyasm trace --db ./rustyasm.db --limit 10
  rustyasm trace --db ./rustyasm.db --run 0190f6f2-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run %s: %v", opts.RunID, err), nil)
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		return outputTrace(formatter, TraceResult{
			Runs:  []store.Run{run},
			Stats: statsFor([]store.Run{run}),
		})
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	return outputTrace(formatter, TraceResult{
		Runs:  runs,
		Stats: statsFor(runs),
	})
}

// statsFor aggregates summary counts across runs.
func statsFor(runs []store.Run) TraceStats {
	stats := TraceStats{TotalRuns: len(runs)}
	for _, r := range runs {
		if r.Status == store.RunStatusError {
			stats.Failed++
		}
		stats.AsmBlocks += r.AsmBlocks
		stats.Warnings += r.Warnings
	}
	return stats
}

// outputTrace renders the trace result in the configured format.
func outputTrace(formatter *OutputFormatter, result TraceResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer

	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	for _, r := range result.Runs {
		marker := "✓"
		if r.Status == store.RunStatusError {
			marker = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %s (%s)  %d asm, %d warning(s)\n",
			marker,
			truncateID(r.ID),
			r.StartedAt.Format(time.RFC3339),
			r.Source,
			r.Dialect,
			r.AsmBlocks,
			r.Warnings)
		if r.Status == store.RunStatusError && r.Error != "" {
			fmt.Fprintf(w, "    %s\n", r.Error)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d run(s), %d failed\n", result.Stats.TotalRuns, result.Stats.Failed)

	return nil
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
