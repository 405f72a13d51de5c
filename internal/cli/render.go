package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/engine"
	"github.com/roach88/tokenreplay/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Net      string
	Silent   string
	Output   string
	Database string
	LogID    string
}

// RenderResult is the JSON output of render when writing to a file.
type RenderResult struct {
	Output    string         `json:"output"`
	Net       string         `json:"net"`
	Fitness   *float64       `json:"fitness,omitempty"`
	Missing   map[string]int `json:"missing,omitempty"`
	Remaining map[string]int `json:"remaining,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <model> [log]",
		Short: "Draw a model as Graphviz DOT annotated with replay diagnostics",
		Long: `Draw a model as a Graphviz DOT digraph.

When a log is given (as a file or with --db and --log-id) it is replayed
first and every place is annotated with its remaining (+n) and missing
(-n) tokens. Places with remaining tokens are filled orange, places with
missing tokens red, places with both purple.

Without -o the DOT source is written to stdout.

Examples:
  tokenreplay render model.pnml orders.csv | dot -Tsvg > orders.svg
  tokenreplay render model.cue -o model.dot`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args, cmd)
		},
	}

	netFlag(cmd, &opts.Net)
	silentFlag(cmd, &opts.Silent, rootOpts)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write DOT to this file")
	dbFlag(cmd, &opts.Database, rootOpts)
	cmd.Flags().StringVar(&opts.LogID, "log-id", "", "stored log id or unique id prefix (with --db)")

	return cmd
}

func runRender(opts *RenderOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.Formatter(cmd)

	net, err := LoadModel(args[0], opts.Net)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	result := RenderResult{Output: opts.Output, Net: net.Name()}
	var report engine.Report
	if len(args) > 1 || opts.LogID != "" {
		log, err := selectLog(ctx, args[1:], opts.Database, opts.LogID)
		if err != nil {
			return reportLoadError(formatter, err)
		}
		eng := engine.New(net,
			engine.WithSilentMarker(opts.Silent),
			engine.WithLogger(opts.Logger(cmd.ErrOrStderr())),
		)
		replay, err := eng.ReplayLog(ctx, eng.NewSession(), log)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		report = replay.Report
		result.Fitness = &replay.Fitness
		result.Missing = report.Missing
		result.Remaining = report.Remaining
		formatter.VerboseLog("Replayed %d trace(s), fitness %.4f", len(replay.Traces), replay.Fitness)
	}

	var buf bytes.Buffer
	if err := render.DOT(&buf, net, report); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "render failed", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s Wrote %s\n", markPass, opts.Output)
	return nil
}
