// Package cli implements the pairjit command-line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mverlet/pairjit/internal/config"
)

// RootOptions holds global state shared by all commands.
type RootOptions struct {
	Verbose    bool
	ConfigFile string

	// Config is populated by the root PersistentPreRunE before any
	// subcommand runs.
	Config *config.Config
}

// Format returns the resolved output format.
func (o *RootOptions) Format() string {
	if o.Config == nil {
		return config.DefaultOutput
	}
	return o.Config.Output
}

// NewRootCommand creates the root command for the pairjit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pairjit",
		Short: "Compile and run pairwise potential evaluators",
		Long: `pairjit compiles textual IR describing a pairwise interaction
potential into an executable evaluator, and runs it against particle
pair samples.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}
			opts.Config = cfg
			setupLogging(cfg.LogLevel, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default pairjit.yaml)")
	cmd.PersistentFlags().String("output", config.DefaultOutput, "output format (text|json)")
	cmd.PersistentFlags().String("log-db", "", "SQLite compile log path")
	cmd.PersistentFlags().String("manifest", "", "CUE potential manifest path")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewDisasmCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// setupLogging installs the process-wide slog handler. Verbose forces
// debug level regardless of the configured one.
func setupLogging(level string, verbose bool) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})))
}
