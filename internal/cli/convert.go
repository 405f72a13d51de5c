package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/pnml"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Net    string
	Output string
}

// ConvertResult is the JSON output of convert when writing to a file.
type ConvertResult struct {
	Output string `json:"output"`
	Net    string `json:"net"`
	Digest string `json:"digest"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <model>",
		Short: "Export a model as PNML",
		Long: `Export any supported model (.cue, .yaml, .yml, .pnml or a CUE package
directory) as a PNML document. Invisible transitions carry the ProM
$invisible$ marker so other tools treat them as silent.

Without -o the document is written to stdout.

Examples:
  tokenreplay convert model.cue -o model.pnml
  tokenreplay convert models/ --net order > order.pnml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	netFlag(cmd, &opts.Net)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write PNML to this file")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	formatter := opts.Formatter(cmd)

	net, err := LoadModel(path, opts.Net)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	var buf bytes.Buffer
	if err := pnml.Encode(&buf, net); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "encode failed", err)
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
		digest, err := net.Digest()
		if err != nil {
			return WrapExitError(ExitCommandError, "digest failed", err)
		}
		return formatter.Success(ConvertResult{Output: opts.Output, Net: net.Name(), Digest: digest})
	}
	fmt.Fprintf(formatter.Writer, "%s Wrote %s\n", markPass, opts.Output)
	return nil
}
