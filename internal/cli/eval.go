package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	Pairs string
}

// EvalResult holds the per-pair energies for JSON output.
type EvalResult struct {
	Module   string    `json:"module"`
	Energies []float32 `json:"energies"`
	Total    float32   `json:"total"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <program.ir>",
		Short: "Evaluate a compiled program against pair samples",
		Long: `Eval compiles an IR program and invokes its evaluator once per pair
sample from a YAML file, printing the energy of each pair and the sum.
Constants from a manifest (--manifest) are applied before compilation.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pairs, "pairs", "", "YAML pair sample file (required)")
	_ = cmd.MarkFlagRequired("pairs")

	return cmd
}

func runEval(rootOpts *RootOptions, opts *EvalOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format(),
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	samples, err := LoadPairs(opts.Pairs)
	if err != nil {
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "loading pairs", err)
	}

	f, _, err := buildFactory(rootOpts, path, formatter)
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Err() != "" {
		_ = formatter.Error(f.FailureKind().String(), f.Err())
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed (%s)", f.FailureKind()))
	}

	eval := f.Eval()
	result := &EvalResult{
		Module:   f.ModuleName(),
		Energies: make([]float32, len(samples)),
	}
	for i, s := range samples {
		e := eval(s.R, s.TypeI, s.QI, s.TypeJ, s.QJ)
		result.Energies[i] = e
		result.Total += e
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for i, s := range samples {
		fmt.Fprintf(formatter.Writer, "pair %d: r=(%g, %g, %g) types=(%d, %d) e=%g\n",
			i, s.R.X, s.R.Y, s.R.Z, s.TypeI, s.TypeJ, result.Energies[i])
	}
	fmt.Fprintf(formatter.Writer, "total: %g\n", result.Total)
	return nil
}
