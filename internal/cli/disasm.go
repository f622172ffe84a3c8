package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mverlet/pairjit/internal/ir"
	"github.com/mverlet/pairjit/internal/parser"
)

// NewDisasmCommand creates the disasm command.
func NewDisasmCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <program.ir>",
		Short: "Print the canonical listing of an IR program",
		Long: `Disasm parses an IR program and prints it back in canonical form:
normalized whitespace, comments stripped, one instruction per line.
The listing round-trips through the parser unchanged.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisasm(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDisasm(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format(),
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	src, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "reading program", err)
	}

	mod, err := parser.Parse(string(src))
	if err != nil {
		diag := parser.Render(err, string(src))
		_ = formatter.Error("parse", diag)
		return NewExitError(ExitFailure, "parse failed")
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{
			"module":  mod.Name,
			"listing": mod.String(),
		})
	}

	if err := ir.Fprint(formatter.Writer, mod); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}
