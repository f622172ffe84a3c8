package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mverlet/pairjit/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	Limit int
	Hash  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent compile attempts from the audit log",
		Long: `History lists recent entries of the compile audit log, newest first.
With --hash, only attempts for that program hash are shown.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "filter by program hash")

	return cmd
}

func runHistory(rootOpts *RootOptions, opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format(),
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if rootOpts.Config.LogDB == "" {
		err := fmt.Errorf("no compile log configured (set --log-db or log_db)")
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "history", err)
	}

	s, err := store.Open(rootOpts.Config.LogDB)
	if err != nil {
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "opening compile log", err)
	}
	defer s.Close()

	ctx := context.Background()
	var records []store.CompileRecord
	if opts.Hash != "" {
		records, err = s.ByHash(ctx, opts.Hash)
		if err == nil && opts.Limit > 0 && len(records) > opts.Limit {
			records = records[:opts.Limit]
		}
	} else {
		records, err = s.Recent(ctx, opts.Limit)
	}
	if err != nil {
		_ = formatter.Error("input", err.Error())
		return WrapExitError(ExitCommandError, "reading compile log", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "no compile attempts recorded")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(formatter.Writer, "%s  %-13s %-10s %s (%d function(s), %s)\n",
			rec.CreatedAt.Format(time.RFC3339),
			rec.Status,
			rec.ModuleName,
			shortHash(rec.ProgramHash),
			rec.FuncCount,
			rec.Duration.Round(time.Microsecond))
		if rec.Diagnostic != "" {
			fmt.Fprintf(formatter.Writer, "    %s\n", firstLine(rec.Diagnostic))
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
