package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/eventlog"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Net          string
	Silent       string
	Workers      int
	MinFitness   float64
	PerTrace     bool
	ShuffleSeed  uint64
	Database     string
	LogID        string
	shuffle      bool
	checkMinimum bool
}

// ReplayResult is the replay command output.
type ReplayResult struct {
	Model         string               `json:"model"`
	Log           string               `json:"log"`
	Session       string               `json:"session"`
	Traces        int                  `json:"traces"`
	FittingTraces int                  `json:"fitting_traces"`
	Dimensions    engine.Dimensions    `json:"dimensions"`
	Fitness       float64              `json:"fitness"`
	Missing       map[string]int       `json:"missing"`
	Remaining     map[string]int       `json:"remaining"`
	Skipped       []string             `json:"skipped,omitempty"`
	PerTrace      []engine.TraceResult `json:"per_trace,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <model> [log]",
		Short: "Replay an event log on a model and report fitness",
		Long: `Replay every trace of an event log on a Petri net model.

The model may be a .pnml, .cue, .yaml or .yml file (or a directory holding
a CUE package). The log is a .csv or .xes file, or a log stored with
"tokenreplay import" selected by --db and --log-id.

The report lists the four replay counters, the fitness score and, per
place, the missing and remaining tokens.

Exit codes:
  0 - Replay completed (and fitness reached --min-fitness, if set)
  1 - Fitness below --min-fitness
  2 - Command error (unreadable model or log, etc.)

Examples:
  tokenreplay replay model.pnml orders.csv
  tokenreplay replay model.cue orders.xes --per-trace
  tokenreplay replay model.yaml --db logs.db --log-id 3fa2 --workers 4
  tokenreplay replay model.pnml orders.csv --min-fitness 0.9 --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.shuffle = cmd.Flags().Changed("shuffle-seed")
			opts.checkMinimum = cmd.Flags().Changed("min-fitness")
			return runReplay(opts, args, cmd)
		},
	}

	netFlag(cmd, &opts.Net)
	silentFlag(cmd, &opts.Silent, rootOpts)
	cmd.Flags().IntVar(&opts.Workers, "workers", rootOpts.Env.Workers, "traces replayed concurrently")
	cmd.Flags().Float64Var(&opts.MinFitness, "min-fitness", 0, "fail when fitness is below this value")
	cmd.Flags().BoolVar(&opts.PerTrace, "per-trace", false, "report every trace")
	cmd.Flags().Uint64Var(&opts.ShuffleSeed, "shuffle-seed", 0, "shuffle activities inside each trace before replay")
	dbFlag(cmd, &opts.Database, rootOpts)
	cmd.Flags().StringVar(&opts.LogID, "log-id", "", "stored log id or unique id prefix (with --db)")

	return cmd
}

// dbFlag registers --db on a command that reads the log store.
func dbFlag(cmd *cobra.Command, target *string, opts *RootOptions) {
	cmd.Flags().StringVar(target, "db", opts.Env.DB, "path to SQLite log store")
}

func runReplay(opts *ReplayOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	if opts.Workers < 1 {
		_ = formatter.Error(ErrCodeArgument, "--workers must be at least 1", nil)
		return NewExitError(ExitCommandError, "--workers must be at least 1")
	}
	if opts.checkMinimum && (opts.MinFitness < 0 || opts.MinFitness > 1) {
		_ = formatter.Error(ErrCodeArgument, "--min-fitness must be within [0, 1]", nil)
		return NewExitError(ExitCommandError, "--min-fitness must be within [0, 1]")
	}

	net, err := LoadModel(args[0], opts.Net)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded net %s: %d places, %d transitions", net.Name(), net.NumPlaces(), net.NumTransitions())

	log, err := selectLog(ctx, args[1:], opts.Database, opts.LogID)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	if opts.shuffle {
		log = eventlog.Shuffle(log, opts.ShuffleSeed)
		formatter.VerboseLog("Shuffled activities with seed %d", opts.ShuffleSeed)
	}
	formatter.VerboseLog("Loaded log %s: %d traces, %d events", log.Name, len(log.Traces), log.Events())

	eng := engine.New(net,
		engine.WithSilentMarker(opts.Silent),
		engine.WithWorkers(opts.Workers),
		engine.WithLogger(opts.Logger(cmd.ErrOrStderr())),
	)
	replay, err := eng.ReplayLogConcurrent(ctx, eng.NewSession(), log)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	result := newReplayResult(net.Name(), log.Name, replay)
	if opts.PerTrace {
		result.PerTrace = replay.Traces
	}

	if opts.checkMinimum && result.Fitness < opts.MinFitness {
		msg := fmt.Sprintf("fitness %.4f is below %.4f", result.Fitness, opts.MinFitness)
		if !formatter.JSON() {
			writeReplayText(formatter.Writer, result)
			fmt.Fprintf(formatter.Writer, "%s %s\n", markFail, msg)
		}
		return formatter.Fail(ErrCodeFitness, msg, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeReplayText(formatter.Writer, result)
	return nil
}

// selectLog picks the log source: a file argument or a stored log. Exactly
// one must be given.
func selectLog(ctx context.Context, args []string, db, id string) (eventlog.Log, error) {
	switch {
	case len(args) > 0 && id != "":
		return eventlog.Log{}, &LoadError{Code: ErrCodeArgument, Message: "give either a log file or --log-id, not both"}
	case len(args) > 0:
		return LoadLog(args[0])
	case id == "":
		return eventlog.Log{}, &LoadError{Code: ErrCodeArgument, Message: "a log file or --log-id is required"}
	case db == "":
		return eventlog.Log{}, &LoadError{Code: ErrCodeArgument, Message: "--log-id requires --db"}
	default:
		return LoadStoredLog(ctx, db, id)
	}
}

func newReplayResult(model, log string, r engine.LogResult) ReplayResult {
	return ReplayResult{
		Model:         model,
		Log:           log,
		Session:       r.Session,
		Traces:        len(r.Traces),
		FittingTraces: r.FittingTraces(),
		Dimensions:    r.Dimensions,
		Fitness:       r.Fitness,
		Missing:       r.Report.Missing,
		Remaining:     r.Report.Remaining,
		Skipped:       distinctSkipped(r.Traces),
	}
}

// distinctSkipped lists every unknown activity once, sorted.
func distinctSkipped(traces []engine.TraceResult) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range traces {
		for _, a := range t.Skipped {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	sort.Strings(out)
	return out
}

func writeReplayText(w io.Writer, r ReplayResult) {
	d := r.Dimensions
	fmt.Fprintf(w, "Replayed %d trace(s) of %s on %s\n", r.Traces, r.Log, r.Model)
	fmt.Fprintf(w, "Session:   %s\n", r.Session)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Fitness:   %.4f\n", r.Fitness)
	fmt.Fprintf(w, "Consumed:  %d\n", d.Consumed)
	fmt.Fprintf(w, "Produced:  %d\n", d.Produced)
	fmt.Fprintf(w, "Missing:   %d %s\n", d.Missing, formatPlaces(r.Missing))
	fmt.Fprintf(w, "Remaining: %d %s\n", d.Remaining, formatPlaces(r.Remaining))
	fmt.Fprintf(w, "Fitting:   %d/%d trace(s)\n", r.FittingTraces, r.Traces)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped:   %s\n", strings.Join(r.Skipped, ", "))
	}

	if len(r.PerTrace) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Traces ===")
	for _, t := range r.PerTrace {
		mark := markPass
		if !t.Fits() {
			mark = markFail
		}
		fmt.Fprintf(w, "%s %s  fitness %.4f", mark, t.Case, t.Fitness)
		if len(t.Missing) > 0 {
			fmt.Fprintf(w, "  missing %s", formatPlaces(t.Missing))
		}
		if len(t.Remaining) > 0 {
			fmt.Fprintf(w, "  remaining %s", formatPlaces(t.Remaining))
		}
		fmt.Fprintln(w)
	}
}

// formatPlaces prints per-place counts with sorted keys.
func formatPlaces(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
