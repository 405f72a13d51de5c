package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testLog returns a small log with a repeated case id and an empty trace.
func testLog() eventlog.Log {
	return eventlog.Log{
		Name: "orders",
		Traces: []eventlog.Trace{
			{Case: "c1", Activities: []string{"register", "check", "ship"}},
			{Case: "c2", Activities: []string{"register", "ship"}},
			{Case: "c1", Activities: []string{"refund"}},
			{Case: "c3", Activities: []string{}},
		},
	}
}
