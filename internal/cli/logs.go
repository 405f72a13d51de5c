package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/store"
)

// LogsOptions holds flags for the logs command.
type LogsOptions struct {
	*RootOptions
	Database string
	Export   string
	Delete   bool
}

// LogList is the JSON output of logs without arguments.
type LogList struct {
	Logs []store.LogInfo `json:"logs"`
}

// LogDetail is the JSON output of logs for one stored log.
type LogDetail struct {
	store.LogInfo
	Activities []store.ActivityCount `json:"activities"`
	Variants   []eventlog.Variant    `json:"variants"`
}

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "List or inspect stored event logs",
		Long: `List the logs in the SQLite log store, or inspect one of them.

Without an argument every stored log is listed in import order. With a log
id (or a unique prefix of one) the log's activity frequencies and trace
variants are shown; --export writes it back out as CSV and --delete
removes it from the store.

Examples:
  tokenreplay logs --db logs.db
  tokenreplay logs 3fa2 --db logs.db
  tokenreplay logs 3fa2 --db logs.db --export orders.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(opts, args, cmd)
		},
	}

	dbFlag(cmd, &opts.Database, rootOpts)
	cmd.Flags().StringVar(&opts.Export, "export", "", "write the log as CSV to this file")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "delete the log from the store")

	return cmd
}

func runLogs(opts *LogsOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	if opts.Database == "" {
		return reportLoadError(formatter, &LoadError{Code: ErrCodeArgument, Message: "--db is required"})
	}
	if len(args) == 0 && (opts.Export != "" || opts.Delete) {
		return reportLoadError(formatter, &LoadError{Code: ErrCodeArgument, Message: "--export and --delete need a log id"})
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}
	defer st.Close()

	if len(args) == 0 {
		logs, err := st.ListLogs(ctx)
		if err != nil {
			return reportLoadError(formatter, storeError(err))
		}
		if formatter.JSON() {
			return formatter.Success(LogList{Logs: logs})
		}
		writeLogList(formatter.Writer, logs)
		return nil
	}

	info, err := st.FindLog(ctx, args[0])
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}

	if opts.Delete {
		if err := st.DeleteLog(ctx, info.ID); err != nil {
			return reportLoadError(formatter, storeError(err))
		}
		if formatter.JSON() {
			return formatter.Success(info)
		}
		fmt.Fprintf(formatter.Writer, "%s Deleted %s (%s)\n", markPass, info.Name, shortID(info.ID))
		return nil
	}

	log, err := st.ReadLog(ctx, info.ID)
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}

	if opts.Export != "" {
		if err := exportCSV(opts.Export, log); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to export log", err)
		}
		formatter.VerboseLog("Exported %s to %s", info.Name, opts.Export)
	}

	counts, err := st.ActivityCounts(ctx, info.ID)
	if err != nil {
		return reportLoadError(formatter, storeError(err))
	}
	detail := LogDetail{
		LogInfo:    info,
		Activities: counts,
		Variants:   eventlog.Variants(log),
	}

	if formatter.JSON() {
		return formatter.Success(detail)
	}
	writeLogDetail(formatter.Writer, detail)
	if opts.Export != "" {
		fmt.Fprintf(formatter.Writer, "%s Wrote %s\n", markPass, opts.Export)
	}
	return nil
}

func exportCSV(path string, log eventlog.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := eventlog.WriteCSV(f, log); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLogList(w io.Writer, logs []store.LogInfo) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No logs stored.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTRACES\tEVENTS")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", shortID(l.ID), l.Name, l.Traces, l.Events)
	}
	tw.Flush()
}

func writeLogDetail(w io.Writer, d LogDetail) {
	fmt.Fprintf(w, "Log:    %s\n", d.Name)
	fmt.Fprintf(w, "ID:     %s\n", d.ID)
	fmt.Fprintf(w, "Traces: %d\n", d.Traces)
	fmt.Fprintf(w, "Events: %d\n", d.Events)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Activities ===")
	if len(d.Activities) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, a := range d.Activities {
		fmt.Fprintf(w, "  %6d  %s\n", a.Count, a.Activity)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Variants ===")
	if len(d.Variants) == 0 {
		fmt.Fprintln(w, "  (no traces)")
	}
	for _, v := range d.Variants {
		seq := strings.Join(v.Activities, ", ")
		if seq == "" {
			seq = "(empty)"
		}
		fmt.Fprintf(w, "  %6d  %s\n", v.Count, seq)
	}
}
