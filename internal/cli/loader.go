package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"cuelang.org/go/cue/token"

	"github.com/roach88/tokenreplay/internal/compiler"
	"github.com/roach88/tokenreplay/internal/eventlog"
	"github.com/roach88/tokenreplay/internal/petri"
	"github.com/roach88/tokenreplay/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Model errors
	ErrCodeModel   = "E101" // Malformed net (unknown node, bad arc, ...)
	ErrCodeCompile = "E102" // CUE or YAML model does not compile
	ErrCodeNoNet   = "E103" // Net selection failed

	// Log errors
	ErrCodeLog      = "E201" // Log file unreadable or malformed
	ErrCodeStore    = "E202" // Log store failure
	ErrCodeNoLog    = "E203" // No stored log matches
	ErrCodeNoCase   = "E204" // Case not in the log
	ErrCodeArgument = "E205" // Inconsistent arguments
)

// Failure codes for conformance results (exit code 1).
const (
	ErrCodeFitness    = "E_FITNESS"
	ErrCodeLint       = "E_LINT"
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// LoadError represents an error that occurred while loading a model or log.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadModel loads a model file and converts failures to LoadErrors.
func LoadModel(path, name string) (*petri.Net, error) {
	net, err := compiler.LoadFile(path, name)
	if err != nil {
		return nil, convertModelError(err)
	}
	return net, nil
}

// convertModelError maps a model loading error to a LoadError with position
// info where the compiler provides it.
func convertModelError(err error) *LoadError {
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Err: err}
	case errors.As(err, &compileErr):
		return &LoadError{Code: ErrCodeCompile, Message: compileErr.Field + ": " + compileErr.Message, Pos: compileErr.Pos, Err: err}
	case petri.IsModelError(err):
		return &LoadError{Code: ErrCodeModel, Message: err.Error(), Err: err}
	case errors.Is(err, compiler.ErrNetSelection):
		return &LoadError{Code: ErrCodeNoNet, Message: err.Error(), Err: err}
	default:
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
}

// LoadLog reads a .csv or .xes event log.
func LoadLog(path string) (eventlog.Log, error) {
	log, err := eventlog.Open(path)
	if err != nil {
		code := ErrCodeLog
		if errors.Is(err, fs.ErrNotExist) {
			code = ErrCodeNotFound
		}
		return eventlog.Log{}, &LoadError{Code: code, Message: err.Error(), Err: err}
	}
	return log, nil
}

// LoadStoredLog reads a log from the store by id or unique id prefix.
func LoadStoredLog(ctx context.Context, dbPath, id string) (eventlog.Log, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return eventlog.Log{}, &LoadError{Code: ErrCodeStore, Message: err.Error(), Err: err}
	}
	defer st.Close()

	info, err := st.FindLog(ctx, id)
	if err != nil {
		return eventlog.Log{}, storeError(err)
	}
	log, err := st.ReadLog(ctx, info.ID)
	if err != nil {
		return eventlog.Log{}, storeError(err)
	}
	return log, nil
}

func storeError(err error) *LoadError {
	if errors.Is(err, store.ErrEmptyID) {
		return &LoadError{Code: ErrCodeArgument, Message: err.Error(), Err: err}
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &LoadError{Code: ErrCodeNoLog, Message: err.Error(), Err: err}
	}
	return &LoadError{Code: ErrCodeStore, Message: err.Error(), Err: err}
}

// reportLoadError writes a load failure in the configured format and
// returns the matching command error.
func reportLoadError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		loadErr = &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
	}
	var details any
	if loadErr.Pos.IsValid() {
		details = map[string]any{
			"file":   loadErr.Pos.Filename(),
			"line":   loadErr.Pos.Line(),
			"column": loadErr.Pos.Column(),
		}
	}
	_ = f.Error(loadErr.Code, loadErr.Message, details)
	return WrapExitError(ExitCommandError, loadErr.Code, err)
}
