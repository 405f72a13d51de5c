package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open reads a log file, choosing the format by extension (.csv or .xes).
// The log is named after the file without its extension.
func Open(path string) (Log, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xes" {
		return Log{}, fmt.Errorf("open log %s: unknown file extension %q (want .csv or .xes)", path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return Log{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if ext == ".csv" {
		return ReadCSV(name, f)
	}
	return ReadXES(name, f)
}
