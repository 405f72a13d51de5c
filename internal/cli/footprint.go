package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/footprint"
)

// FootprintResult is the JSON output of the footprint command.
type FootprintResult struct {
	Log         string     `json:"log"`
	Activities  []string   `json:"activities"`
	Rows        [][]string `json:"rows"`
	Other       string     `json:"other,omitempty"`
	Conformance *float64   `json:"conformance,omitempty"`
}

// NewFootprintCommand creates the footprint command.
func NewFootprintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footprint <log> [other-log]",
		Short: "Print a log's footprint matrix or compare two logs",
		Long: `Print the footprint matrix of an event log.

Each cell relates two activities under the directly-follows relation:
"->" (only a then b), "<-" (only b then a), "||" (both orders) or "#"
(never adjacent). Given a second log, the footprint conformance of the two
logs is printed as well: the share of matching cells over the union of
their activities.

Examples:
  tokenreplay footprint orders.csv
  tokenreplay footprint orders.csv shuffled.csv --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFootprint(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runFootprint(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	logs := make([]eventlog.Log, len(args))
	for i, path := range args {
		log, err := LoadLog(path)
		if err != nil {
			return reportLoadError(formatter, err)
		}
		logs[i] = log
	}

	m := footprint.FromLog(logs[0])
	result := FootprintResult{
		Log:        logs[0].Name,
		Activities: m.Activities(),
		Rows:       m.Rows(),
	}
	if len(logs) > 1 {
		c := footprint.Conformance(m, footprint.FromLog(logs[1]))
		result.Other = logs[1].Name
		result.Conformance = &c
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Footprint of %s\n\n", result.Log)
	if err := m.WriteText(w); err != nil {
		return err
	}
	if result.Conformance != nil {
		fmt.Fprintf(w, "\nConformance with %s: %.4f\n", result.Other, *result.Conformance)
	}
	return nil
}
