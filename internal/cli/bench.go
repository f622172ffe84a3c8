package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	Pairs string
	Calls int
}

// BenchResult holds timing figures for JSON output.
type BenchResult struct {
	Module     string  `json:"module"`
	Calls      int     `json:"calls"`
	ElapsedUS  int64   `json:"elapsed_us"`
	CallsPerS  float64 `json:"calls_per_sec"`
	MeanEnergy float32 `json:"mean_energy"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{}

	cmd := &cobra.Command{
		Use:   "bench <program.ir>",
		Short: "Measure evaluator throughput",
		Long: `Bench compiles an IR program and invokes its evaluator repeatedly,
cycling through the pair samples, then reports sustained call rate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pairs, "pairs", "", "YAML pair sample file (required)")
	cmd.Flags().IntVarP(&opts.Calls, "calls", "n", 1000000, "number of evaluator calls")
	_ = cmd.MarkFlagRequired("pairs")

	return cmd
}

func runBench(rootOpts *RootOptions, opts *BenchOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format(),
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if opts.Calls <= 0 {
		err := fmt.Errorf("calls must be positive, got %d", opts.Calls)
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "invalid flag", err)
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

	// Warm call so lazy code generation does not skew the measurement.
	s0 := samples[0]
	_ = eval(s0.R, s0.TypeI, s0.QI, s0.TypeJ, s0.QJ)

	var sum float32
	start := time.Now()
	for i := 0; i < opts.Calls; i++ {
		s := samples[i%len(samples)]
		sum += eval(s.R, s.TypeI, s.QI, s.TypeJ, s.QJ)
	}
	elapsed := time.Since(start)

	rate := float64(opts.Calls) / elapsed.Seconds()
	result := &BenchResult{
		Module:     f.ModuleName(),
		Calls:      opts.Calls,
		ElapsedUS:  elapsed.Microseconds(),
		CallsPerS:  rate,
		MeanEnergy: sum / float32(opts.Calls),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Thousands separators keep large call counts readable.
	p := message.NewPrinter(language.English)
	p.Fprintf(formatter.Writer, "%d calls over %d sample(s) in %v\n",
		result.Calls, len(samples), elapsed.Round(time.Millisecond))
	p.Fprintf(formatter.Writer, "%.0f calls/s, mean energy %g\n", rate, result.MeanEnergy)
	return nil
}
