package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mverlet/pairjit/internal/jit"
	"github.com/mverlet/pairjit/internal/manifest"
	"github.com/mverlet/pairjit/internal/store"
)

// CompileResult holds the summary reported for a successful build.
type CompileResult struct {
	Module      string `json:"module"`
	ProgramHash string `json:"program_hash"`
	Functions   int    `json:"functions"`
	DurationUS  int64  `json:"duration_us"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <program.ir>",
		Short: "Compile an IR program and report diagnostics",
		Long: `Compile parses and verifies an IR program, resolves the eval entry
point, and reports the outcome. With --log-db the attempt is appended
to the compile audit log whether it succeeds or fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCompile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format(),
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	f, duration, err := buildFactory(opts, path, formatter)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.Config.LogDB != "" {
		recordAttempt(opts.Config.LogDB, f, duration)
	}

	if f.Err() != "" {
		_ = formatter.Error(f.FailureKind().String(), f.Err())
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed (%s)", f.FailureKind()))
	}

	result := &CompileResult{
		Module:      f.ModuleName(),
		ProgramHash: f.ProgramHash(),
		Functions:   len(f.Module().Funcs),
		DurationUS:  duration.Microseconds(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ compiled module %q: %d function(s) in %s\n",
		result.Module, result.Functions, duration.Round(time.Microsecond))
	fmt.Fprintf(formatter.Writer, "  hash: %s\n", result.ProgramHash)
	return nil
}

// buildFactory reads the IR file and runs the pipeline, wiring manifest
// constants and the verbose compile hook. Command-level problems (bad
// path, bad manifest) are returned as ExitErrors; compilation failures
// live on the returned factory.
func buildFactory(opts *RootOptions, path string, formatter *OutputFormatter) (*jit.Factory, time.Duration, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("input", err.Error())
		return nil, 0, WrapExitError(ExitCommandError, "reading program", err)
	}

	jitOpts := []jit.Option{
		jit.WithCompileHook(func(symbol string) {
			formatter.VerboseLog("materialized @%s", symbol)
		}),
	}

	if opts.Config.Manifest != "" {
		m, err := manifest.Load(opts.Config.Manifest)
		if err != nil {
			_ = formatter.Error("input", err.Error())
			return nil, 0, WrapExitError(ExitCommandError, "loading manifest", err)
		}
		if len(m.Constants) > 0 {
			jitOpts = append(jitOpts, jit.WithConstants(m.Constants))
		}
	}

	start := time.Now()
	f := jit.New(string(src), jitOpts...)
	return f, time.Since(start), nil
}

// recordAttempt appends the outcome to the compile audit log. Logging
// failures are reported but never fail the command.
func recordAttempt(dbPath string, f *jit.Factory, duration time.Duration) {
	s, err := store.Open(dbPath)
	if err != nil {
		slog.Warn("compile log unavailable", "path", dbPath, "error", err)
		return
	}
	defer s.Close()

	funcCount := 0
	if mod := f.Module(); mod != nil {
		funcCount = len(mod.Funcs)
	}

	_, err = s.RecordCompile(context.Background(), store.CompileRecord{
		ProgramHash: f.ProgramHash(),
		ModuleName:  f.ModuleName(),
		Status:      auditStatus(f.FailureKind()),
		Diagnostic:  f.Err(),
		FuncCount:   funcCount,
		Duration:    duration,
	})
	if err != nil {
		slog.Warn("compile log write failed", "path", dbPath, "error", err)
	}
}

func auditStatus(kind jit.FailKind) string {
	switch kind {
	case jit.FailParse:
		return store.StatusParseError
	case jit.FailVerify:
		return store.StatusVerifyError
	case jit.FailResolve:
		return store.StatusResolveError
	default:
		return store.StatusOK
	}
}
