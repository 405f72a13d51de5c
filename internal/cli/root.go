package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tokenreplay/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string // "debug" | "info" | "warn" | "error"

	// Env holds the environment defaults the flags were seeded from.
	Env config.Env
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// defaultEnv is used when the environment cannot be parsed; the parse
// error is reported before any command runs.
var defaultEnv = config.Env{
	SilentMarker: "tau",
	Workers:      1,
	LogLevel:     "warn",
	Format:       "text",
}

// NewRootCommand creates the root command for the tokenreplay CLI.
// Flag defaults come from TOKENREPLAY_* environment variables.
func NewRootCommand() *cobra.Command {
	env, envErr := config.Load()
	if envErr != nil {
		env = defaultEnv
	}
	opts := &RootOptions{Env: env}

	cmd := &cobra.Command{
		Use:   "tokenreplay",
		Short: "Token-based replay of event logs on Petri nets",
		Long: `Replay event logs on a Petri net model and measure how well they fit.

Every activity of a trace fires the transition carrying its label. Disabled
transitions are fired anyway and the tokens they lacked are counted as
missing; tokens left over when a trace ends are counted as remaining. The
counters reduce to a fitness score between 0 and 1.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, err := parseLevel(opts.LogLevel); err != nil {
				return WrapExitError(ExitCommandError, "invalid log level", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (also lowers the log level to debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", env.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", env.LogLevel, "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewFootprintCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// Formatter builds an output formatter writing to the command's streams.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// Logger builds the structured logger handed to the engine. Logs always go
// to stderr so they never mix with command output.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(o.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseLevel accepts the slog level names, case-insensitively.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// silentFlag registers --silent on a command that replays traces.
func silentFlag(cmd *cobra.Command, target *string, opts *RootOptions) {
	cmd.Flags().StringVar(target, "silent", opts.Env.SilentMarker, "silent-step marker in traces")
}

// netFlag registers --net on a command that loads a model.
func netFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "net", "", "net to use when the model defines several")
}
