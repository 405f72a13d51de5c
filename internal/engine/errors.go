package engine

import (
	"errors"
	"fmt"
	"strings"
)

// FireError is returned by Run.Fire, the strict single-step API. The replay
// loop never produces it: Step skips unknown labels and force-fires
// disabled transitions instead.
type FireError struct {
	// Code identifies the error category.
	Code FireErrorCode

	// Activity is the label that could not be fired.
	Activity string

	// Lacking lists the empty input places (ErrCodeNotEnabled only).
	Lacking []string
}

// FireErrorCode categorizes fire errors.
type FireErrorCode string

const (
	// ErrCodeUnknownActivity indicates no transition carries the label.
	ErrCodeUnknownActivity FireErrorCode = "UNKNOWN_ACTIVITY"

	// ErrCodeNotEnabled indicates an input place of the transition is empty.
	ErrCodeNotEnabled FireErrorCode = "NOT_ENABLED"

	// ErrCodeRunEnded indicates the run was already reconciled by End.
	ErrCodeRunEnded FireErrorCode = "RUN_ENDED"
)

func newFireError(code FireErrorCode, activity string, lacking []string) *FireError {
	return &FireError{Code: code, Activity: activity, Lacking: lacking}
}

// Error implements the error interface.
func (e *FireError) Error() string {
	if len(e.Lacking) > 0 {
		return fmt.Sprintf("%s: %q (empty: %s)", e.Code, e.Activity, strings.Join(e.Lacking, ", "))
	}
	return fmt.Sprintf("%s: %q", e.Code, e.Activity)
}

// IsUnknownActivity returns true if err is a FireError for an unknown label.
func IsUnknownActivity(err error) bool {
	var fe *FireError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeUnknownActivity
	}
	return false
}

// IsNotEnabled returns true if err is a FireError for a disabled transition.
func IsNotEnabled(err error) bool {
	var fe *FireError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeNotEnabled
	}
	return false
}

// IsRunEnded returns true if err is a FireError for a run that already ended.
func IsRunEnded(err error) bool {
	var fe *FireError
	if errors.As(err, &fe) {
		return fe.Code == ErrCodeRunEnded
	}
	return false
}
