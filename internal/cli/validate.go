package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/compiler"
	"github.com/roach88/tokenreplay/internal/petri"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Net    string
	Silent string
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Net      string                     `json:"net"`
	Digest   string                     `json:"digest"`
	Stats    petri.Stats                `json:"stats"`
	Labels   []string                   `json:"labels"`
	Initial  map[string]int             `json:"initial"`
	Final    map[string]int             `json:"final"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Build a model and report its statistics",
		Long: `Build a Petri net model and report node counts, markings and its digest.

Malformed models (undeclared arc endpoints, place-to-place arcs, duplicate
nodes, ...) are command errors. Well-formed nets are also linted for
shapes that make replay results surprising, such as an empty final
marking or a label that equals the silent marker. Lint findings are
warnings unless --strict is set.

Exit codes:
  0 - Model is valid
  1 - Lint findings with --strict
  2 - Model cannot be built

Examples:
  tokenreplay validate model.pnml
  tokenreplay validate models/ --net order --strict`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	netFlag(cmd, &opts.Net)
	silentFlag(cmd, &opts.Silent, rootOpts)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat lint warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	net, err := LoadModel(path, opts.Net)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Built net %s from %s", net.Name(), path)

	digest, err := net.Digest()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "digest failed", err)
	}

	result := ValidationResult{
		Net:      net.Name(),
		Digest:   digest,
		Stats:    net.Stats(),
		Labels:   net.Labels(),
		Initial:  net.Initial().Named(net),
		Final:    net.Final().Named(net),
		Warnings: compiler.Validate(net, opts.Silent),
	}

	if opts.Strict && len(result.Warnings) > 0 {
		msg := fmt.Sprintf("validation failed with %d warning(s)", len(result.Warnings))
		if !formatter.JSON() {
			writeValidationText(formatter.Writer, result)
			fmt.Fprintf(formatter.Writer, "%s %s\n", markFail, msg)
		}
		return formatter.Fail(ErrCodeLint, msg, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	writeValidationText(formatter.Writer, result)
	fmt.Fprintf(formatter.Writer, "%s Model valid\n", markPass)
	return nil
}

func writeValidationText(w io.Writer, r ValidationResult) {
	s := r.Stats
	fmt.Fprintf(w, "Net:         %s\n", r.Net)
	fmt.Fprintf(w, "Digest:      %s\n", r.Digest)
	fmt.Fprintf(w, "Places:      %d\n", s.Places)
	fmt.Fprintf(w, "Transitions: %d (%d invisible)\n", s.Transitions, s.Invisible)
	fmt.Fprintf(w, "Arcs:        %d\n", s.Arcs)
	fmt.Fprintf(w, "Initial:     %s\n", formatPlaces(r.Initial))
	fmt.Fprintf(w, "Final:       %s\n", formatPlaces(r.Final))

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s: %s: %s\n", warn.Code, warn.Field, warn.Message)
		}
		fmt.Fprintln(w)
	}
}
