package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaoxiaojun/rusty-asm/internal/engine"
	"github.com/gaoxiaojun/rusty-asm/internal/ir"
	"github.com/gaoxiaojun/rusty-asm/internal/store"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	Output  string // output file path, "" for stdout
	Dialect string // dialect CUE file, "" for built-in default
	Cache   string // SQLite cache path, "" disables caching
}

// RewriteReport is the JSON payload for a successful rewrite.
type RewriteReport struct {
	Source       string           `json:"source"`
	Dialect      string           `json:"dialect"`
	Output       string           `json:"output"`
	AsmBlocks    int              `json:"asm_blocks"`
	Declarations int              `json:"declarations"`
	Warnings     []engine.Warning `json:"warnings,omitempty"`
	CacheHit     bool             `json:"cache_hit"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <source>",
		Short: "Rewrite a block into declarations plus asm! invocations",
		Long: `Rewrite one block body: bridge variable declarations become ordinary
declarations, clobber declarations vanish, and each embedded asm block
becomes a positional asm! invocation with resolved constraint lists.

Pass "-" as the source to read from stdin.

Examples:
  rustyasm rewrite main.block
  rustyasm rewrite - < main.block
  rustyasm rewrite main.block -o main.rs --dialect llvm.cue
  rustyasm rewrite main.block --cache ./rustyasm.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "dialect CUE file (default built-in)")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "SQLite rewrite cache path")

	return cmd
}

func runRewrite(opts *RewriteOptions, sourcePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	source, name, err := LoadSource(sourcePath, cmd.InOrStdin())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	spec, err := LoadDialect(opts.Dialect)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	formatter.VerboseLog("Rewriting %s under dialect %s", name, spec.Name)

	ctx := context.Background()

	// Open the cache when requested. Cache failures are command errors,
	// not transform errors.
	var st *store.Store
	var runID string
	if opts.Cache != "" {
		st, err = store.Open(opts.Cache)
		if err != nil {
			_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open cache", err)
		}
		defer st.Close()

		runID, err = st.RecordRun(ctx, name, spec.Name)
		if err != nil {
			_ = formatter.Error(ErrCodeCacheFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	report, err := rewriteWithCache(ctx, st, runID, name, source, spec)
	if err != nil {
		if st != nil {
			_ = st.FinishRun(ctx, runID, err.Error(), 0, 0)
		}
		return outputTransformError(formatter, err)
	}
	report.Source = name

	if st != nil {
		if err := st.FinishRun(ctx, runID, "", report.AsmBlocks, len(report.Warnings)); err != nil {
			formatter.VerboseLog("cache: finish run: %v", err)
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(report.Output), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}

	return outputRewriteSuccess(formatter, report, opts.Output)
}

// rewriteWithCache transforms the source, consulting the cache first
// when st is non-nil. A nil st always transforms.
func rewriteWithCache(ctx context.Context, st *store.Store, runID, name, source string, spec *ir.DialectSpec) (*RewriteReport, error) {
	var hash string
	if st != nil {
		var err error
		hash, err = ir.BlockHash(source, spec)
		if err != nil {
			return nil, err
		}

		rec, err := st.GetBlock(ctx, hash)
		if err == nil {
			return &RewriteReport{
				Dialect:   spec.Name,
				Output:    rec.Emitted,
				AsmBlocks: rec.AsmBlocks,
				CacheHit:  true,
			}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	eng := engine.New(spec)
	res, err := eng.TransformSource(name, source)
	if err != nil {
		return nil, err
	}

	if st != nil {
		if _, err := st.PutBlock(ctx, hash, runID, res.Output, res.AsmBlocks); err != nil {
			return nil, err
		}
	}

	return &RewriteReport{
		Dialect:      spec.Name,
		Output:       res.Output,
		AsmBlocks:    res.AsmBlocks,
		Declarations: res.Declarations,
		Warnings:     res.Warnings,
	}, nil
}

// outputRewriteSuccess outputs a successful rewrite.
func outputRewriteSuccess(formatter *OutputFormatter, report *RewriteReport, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	// Warnings go to stderr so the rewritten source stays pipeable.
	for _, w := range report.Warnings {
		fmt.Fprintln(formatter.ErrWriter, w.String())
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "✓ Rewrote %s: %d asm block(s), %d declaration(s)\n",
			report.Source, report.AsmBlocks, report.Declarations)
		fmt.Fprintf(formatter.Writer, "Wrote output to %s\n", outputFile)
		return nil
	}

	fmt.Fprintln(formatter.Writer, report.Output)
	return nil
}

// outputLoadError reports an input-loading failure (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := MapTransformError(err)
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputTransformError reports a parse or resolution failure (exit code 1).
func outputTransformError(formatter *OutputFormatter, err error) error {
	code, message := MapTransformError(err)
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message), nil)
}
