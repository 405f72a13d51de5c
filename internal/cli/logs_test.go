package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/store"
)

func importReview(t *testing.T, dbPath string) store.LogInfo {
	t.Helper()
	out, err := execute(t, NewImportCommand, "json", reviewLog, "--db", dbPath)
	require.NoError(t, err)
	var info store.LogInfo
	decodeResponse(t, out, &info)
	return info
}

func TestImport_Text(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")

	out, err := execute(t, NewImportCommand, "text", reviewLog, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported review as ")
	assert.Contains(t, out, "(4 traces, 13 events)")

	out, err = execute(t, NewImportCommand, "text", reviewLog, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Log review already stored as ")
}

func TestImport_JSONIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")

	first := importReview(t, dbPath)
	assert.False(t, first.Existing)
	assert.Equal(t, 4, first.Traces)
	assert.Equal(t, 13, first.Events)

	second := importReview(t, dbPath)
	assert.True(t, second.Existing)
	assert.Equal(t, first.ID, second.ID)
}

func TestImport_Errors(t *testing.T) {
	_, err := execute(t, NewImportCommand, "text", reviewLog)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	dbPath := filepath.Join(t.TempDir(), "logs.db")
	_, err = execute(t, NewImportCommand, "text", "testdata/nope.csv", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLogs_List(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")

	out, err := execute(t, NewLogsCommand, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No logs stored.")

	info := importReview(t, dbPath)

	out, err = execute(t, NewLogsCommand, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, shortID(info.ID))
	assert.Contains(t, out, "review")

	out, err = execute(t, NewLogsCommand, "json", "--db", dbPath)
	require.NoError(t, err)
	var list LogList
	decodeResponse(t, out, &list)
	require.Len(t, list.Logs, 1)
	assert.Equal(t, info.ID, list.Logs[0].ID)
}

func TestLogs_Detail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	info := importReview(t, dbPath)

	out, err := execute(t, NewLogsCommand, "json", info.ID[:6], "--db", dbPath)
	require.NoError(t, err)

	var detail LogDetail
	decodeResponse(t, out, &detail)
	assert.Equal(t, info.ID, detail.ID)
	require.NotEmpty(t, detail.Activities)
	assert.Equal(t, store.ActivityCount{Activity: "register", Count: 4}, detail.Activities[0])
	assert.Len(t, detail.Variants, 4)

	out, err = execute(t, NewLogsCommand, "text", info.ID[:6], "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Activities ===")
	assert.Contains(t, out, "     4  register")
	assert.Contains(t, out, "=== Variants ===")
	assert.Contains(t, out, "     1  register, tau, ship")
}

func TestLogs_Export(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "logs.db")
	info := importReview(t, dbPath)
	exported := filepath.Join(dir, "exported.csv")

	_, err := execute(t, NewLogsCommand, "text", info.ID, "--db", dbPath, "--export", exported)
	require.NoError(t, err)

	original, err := eventlog.Open(reviewLog)
	require.NoError(t, err)
	back, err := eventlog.Open(exported)
	require.NoError(t, err)
	assert.Equal(t, original.Traces, back.Traces)
}

func TestLogs_Delete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	info := importReview(t, dbPath)

	out, err := execute(t, NewLogsCommand, "text", info.ID, "--db", dbPath, "--delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted review")

	out, err = execute(t, NewLogsCommand, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No logs stored.")
}

func TestLogs_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"no db", []string{}, ErrCodeArgument},
		{"export without id", []string{"--db", dbPath, "--export", "x.csv"}, ErrCodeArgument},
		{"unknown id", []string{"ffff", "--db", dbPath}, ErrCodeNoLog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewLogsCommand, "json", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			resp := decodeResponse(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestLogs_EmptyIDIsRejected(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	importReview(t, dbPath)

	out, err := execute(t, NewLogsCommand, "json", "", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeArgument, resp.Error.Code)
}
