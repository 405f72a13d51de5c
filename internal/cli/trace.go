package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/petri"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Net      string
	Silent   string
	Case     string
	Database string
	LogID    string
}

// TraceStep is one replay step with the marking it left behind.
type TraceStep struct {
	Seq        int64           `json:"seq"`
	Kind       engine.StepKind `json:"kind"`
	Activity   string          `json:"activity,omitempty"`
	Transition string          `json:"transition,omitempty"`
	Lacking    []string        `json:"lacking,omitempty"`
	Marking    map[string]int  `json:"marking"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Case       string             `json:"case"`
	Log        string             `json:"log"`
	Net        string             `json:"net"`
	Session    string             `json:"session"`
	Activities []string           `json:"activities"`
	Initial    map[string]int     `json:"initial"`
	Steps      []TraceStep        `json:"steps"`
	Result     engine.TraceResult `json:"result"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <model> [log] --case <id>",
		Short: "Replay one case step by step",
		Long: `Replay a single case of a log and show every step.

Each step shows what happened to one activity: fired, force-fired (with
the input places that lacked a token), accepted as a silent step, skipped
as unknown, or an orphaned silent marker. The marking after the step is
printed next to it. The last step reconciles the marking against the
final marking.

Examples:
  tokenreplay trace model.pnml orders.csv --case 1042
  tokenreplay trace model.cue --db logs.db --log-id 3fa2 --case 7 --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args, cmd)
		},
	}

	netFlag(cmd, &opts.Net)
	silentFlag(cmd, &opts.Silent, rootOpts)
	cmd.Flags().StringVar(&opts.Case, "case", "", "case id to replay (required)")
	_ = cmd.MarkFlagRequired("case")
	dbFlag(cmd, &opts.Database, rootOpts)
	cmd.Flags().StringVar(&opts.LogID, "log-id", "", "stored log id or unique id prefix (with --db)")

	return cmd
}

func runTrace(opts *TraceOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	net, err := LoadModel(args[0], opts.Net)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	log, err := selectLog(ctx, args[1:], opts.Database, opts.LogID)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	trace, ok := log.Case(opts.Case)
	if !ok {
		return reportLoadError(formatter, &LoadError{
			Code:    ErrCodeNoCase,
			Message: fmt.Sprintf("case %q not found in log %s", opts.Case, log.Name),
		})
	}

	rec := engine.NewRecorder()
	eng := engine.New(net,
		engine.WithSilentMarker(opts.Silent),
		engine.WithRecorder(rec),
		engine.WithLogger(opts.Logger(cmd.ErrOrStderr())),
	)
	result := replayStepwise(eng, rec, trace)
	result.Log = log.Name

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeTraceText(formatter.Writer, result)
	return nil
}

// replayStepwise replays trace one activity at a time, pairing every
// recorded step with the marking after it. A silent marker paired with
// the next activity records two steps; both show the marking after the
// pair.
func replayStepwise(eng *engine.Engine, rec *engine.Recorder, trace eventlog.Trace) TraceResult {
	net := eng.Net()
	session := eng.NewSession()
	run := eng.Start(session, trace.Case)

	var steps []TraceStep
	collect := func() {
		marking := run.Marking().Named(net)
		all := rec.Steps()
		for _, s := range all[len(steps):] {
			steps = append(steps, TraceStep{
				Seq:        s.Seq,
				Kind:       s.Kind,
				Activity:   s.Activity,
				Transition: s.Transition,
				Lacking:    s.Lacking,
				Marking:    marking,
			})
		}
	}

	acts := trace.Activities
	for i := 0; i < len(acts); {
		if petri.NormalizeLabel(acts[i]) == eng.SilentMarker() {
			i += run.StepSilent(acts, i)
		} else {
			run.Step(acts[i])
			i++
		}
		collect()
	}
	res := run.End()
	collect()

	activities := acts
	if activities == nil {
		activities = []string{}
	}
	return TraceResult{
		Case:       trace.Case,
		Net:        net.Name(),
		Session:    session.ID(),
		Activities: activities,
		Initial:    net.Initial().Named(net),
		Steps:      steps,
		Result:     res,
	}
}

// writeTraceText outputs the trace result as text.
func writeTraceText(w io.Writer, r TraceResult) {
	fmt.Fprintf(w, "Trace for case %s of %s on %s\n", r.Case, r.Log, r.Net)
	fmt.Fprintf(w, "Activities: %s\n", strings.Join(r.Activities, ", "))
	fmt.Fprintf(w, "Initial:    %s\n", formatPlaces(r.Initial))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Steps ===")
	for _, s := range r.Steps {
		fmt.Fprintf(w, "  [%d] %-9s %s\n", s.Seq, s.Kind, describeStep(s))
	}
	fmt.Fprintln(w)

	res := r.Result
	d := res.Dimensions
	fmt.Fprintln(w, "=== Result ===")
	fmt.Fprintf(w, "  Fitness:   %.4f\n", res.Fitness)
	fmt.Fprintf(w, "  Consumed:  %d\n", d.Consumed)
	fmt.Fprintf(w, "  Produced:  %d\n", d.Produced)
	fmt.Fprintf(w, "  Missing:   %d %s\n", d.Missing, formatPlaces(res.Missing))
	fmt.Fprintf(w, "  Remaining: %d %s\n", d.Remaining, formatPlaces(res.Remaining))
}

// describeStep formats the activity, transition and marking of a step.
func describeStep(s TraceStep) string {
	var parts []string
	switch {
	case s.Transition != "":
		parts = append(parts, s.Activity+" -> "+s.Transition)
	case s.Activity != "":
		parts = append(parts, s.Activity)
	}
	if len(s.Lacking) > 0 {
		parts = append(parts, "lacking "+strings.Join(s.Lacking, ", "))
	}
	parts = append(parts, formatPlaces(s.Marking))
	return strings.Join(parts, "  ")
}
