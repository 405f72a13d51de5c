package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <log>",
		Short: "Import an event log into the SQLite log store",
		Long: `Import a .csv or .xes event log into the SQLite log store.

A stored log is identified by the digest of its cases and activities, so
importing the same log again is a no-op that reports the existing entry.

Examples:
  tokenreplay import orders.csv --db logs.db
  TOKENREPLAY_DB=logs.db tokenreplay import orders.xes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	dbFlag(cmd, &opts.Database, rootOpts)

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	if opts.Database == "" {
		return reportLoadError(formatter, &LoadError{Code: ErrCodeArgument, Message: "--db is required"})
	}

	log, err := LoadLog(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}
	defer st.Close()

	info, err := st.ImportLog(ctx, log)
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}

	if formatter.JSON() {
		return formatter.Success(info)
	}
	w := formatter.Writer
	if info.Existing {
		fmt.Fprintf(w, "Log %s already stored as %s\n", log.Name, shortID(info.ID))
		return nil
	}
	fmt.Fprintf(w, "%s Imported %s as %s (%d traces, %d events)\n", markPass, info.Name, shortID(info.ID), info.Traces, info.Events)
	return nil
}

// shortID abbreviates a log digest for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
