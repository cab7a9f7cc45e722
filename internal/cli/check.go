package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaoxiaojun/rusty-asm/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Dialect string
}

// CheckReport is the JSON payload for a check run.
type CheckReport struct {
	Source       string           `json:"source"`
	Dialect      string           `json:"dialect"`
	AsmBlocks    int              `json:"asm_blocks"`
	Declarations int              `json:"declarations"`
	Warnings     []engine.Warning `json:"warnings,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <source>",
		Short: "Parse and resolve a block without emitting output",
		Long: `Parse a block body and resolve all asm references against the scope
stack, reporting diagnostics without writing rewritten output.

Exit code 0 means the block would rewrite cleanly. Exit code 1 means a
parse or resolution error. Warnings do not affect the exit code.

Pass "-" as the source to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "dialect CUE file (default built-in)")

	return cmd
}

func runCheck(opts *CheckOptions, sourcePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
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

	formatter.VerboseLog("Checking %s under dialect %s", name, spec.Name)

	eng := engine.New(spec)
	res, err := eng.TransformSource(name, source)
	if err != nil {
		return outputTransformError(formatter, err)
	}

	report := &CheckReport{
		Source:       name,
		Dialect:      spec.Name,
		AsmBlocks:    res.AsmBlocks,
		Declarations: res.Declarations,
		Warnings:     res.Warnings,
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d asm block(s), %d declaration(s)\n",
		report.Source, report.AsmBlocks, report.Declarations)
	for _, w := range report.Warnings {
		fmt.Fprintln(formatter.Writer, w.String())
	}

	return nil
}
