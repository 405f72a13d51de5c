package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tokenreplay", cmd.Use)
	assert.Contains(t, cmd.Long, "fitness")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"replay", "validate", "render", "import", "logs", "footprint", "test", "trace", "convert"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "warn", levelFlag.DefValue)
}

func TestReplayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)

	for flag, def := range map[string]string{
		"silent":       "tau",
		"workers":      "1",
		"min-fitness":  "0",
		"per-trace":    "false",
		"shuffle-seed": "0",
		"db":           "",
		"log-id":       "",
		"net":          "",
	} {
		f := replayCmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag --%s", flag)
		assert.Equal(t, def, f.DefValue, "flag --%s", flag)
	}
}

func TestOutputFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"render", "convert"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		outputFlag := sub.Flags().Lookup("output")
		require.NotNil(t, outputFlag, name)
		assert.Equal(t, "o", outputFlag.Shorthand)
	}
}

func TestRootCommand_EnvDefaults(t *testing.T) {
	t.Setenv("TOKENREPLAY_FORMAT", "json")
	t.Setenv("TOKENREPLAY_WORKERS", "3")
	t.Setenv("TOKENREPLAY_SILENT_MARKER", "skip")
	t.Setenv("TOKENREPLAY_DB", "/tmp/logs.db")

	cmd := NewRootCommand()
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)

	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)
	assert.Equal(t, "3", replayCmd.Flags().Lookup("workers").DefValue)
	assert.Equal(t, "skip", replayCmd.Flags().Lookup("silent").DefValue)
	assert.Equal(t, "/tmp/logs.db", replayCmd.Flags().Lookup("db").DefValue)
}

func TestRootCommand_InvalidEnvironment(t *testing.T) {
	t.Setenv("TOKENREPLAY_WORKERS", "0")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", reviewModel})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "validate", reviewModel})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "validate", reviewModel})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootCommand_RunsSubcommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"validate", reviewModel})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Model valid")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func TestRootOptions_Logger(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &RootOptions{LogLevel: "warn"}
	opts.Logger(buf).Info("hidden")
	assert.Empty(t, buf.String())

	opts.Verbose = true
	opts.Logger(buf).Debug("shown", "case", "7")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "case=7")
}
