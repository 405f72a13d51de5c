package petri

import (
	"errors"
	"fmt"
	"strings"
)

// ModelErrorCode categorizes malformed-model errors.
type ModelErrorCode string

const (
	// ErrCodeUnknownNode indicates an arc or marking references an undeclared node.
	ErrCodeUnknownNode ModelErrorCode = "UNKNOWN_NODE"

	// ErrCodeBadArc indicates an arc joining two places or two transitions.
	ErrCodeBadArc ModelErrorCode = "BAD_ARC"

	// ErrCodeDuplicateNode indicates a node name declared twice.
	ErrCodeDuplicateNode ModelErrorCode = "DUPLICATE_NODE"

	// ErrCodeDuplicateArc indicates the same arc declared twice.
	ErrCodeDuplicateArc ModelErrorCode = "DUPLICATE_ARC"

	// ErrCodeNegativeTokens indicates a marking with a negative count.
	ErrCodeNegativeTokens ModelErrorCode = "NEGATIVE_TOKENS"

	// ErrCodeEmptyName indicates a node without a name.
	ErrCodeEmptyName ModelErrorCode = "EMPTY_NAME"
)

// ModelError is raised while building a net. It is the only fatal error
// class in the toolkit; replay itself never fails on a built net.
type ModelError struct {
	Code    ModelErrorCode
	Node    string
	Message string
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ModelErrors collects every problem found by Build.
type ModelErrors []*ModelError

// Error implements the error interface.
func (es ModelErrors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d model errors: %s", len(es), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is/As.
func (es ModelErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// IsModelError returns true if err is or wraps a ModelError.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}

// HasCode returns true if err carries a ModelError with the given code.
func HasCode(err error, code ModelErrorCode) bool {
	var es ModelErrors
	if errors.As(err, &es) {
		for _, e := range es {
			if e.Code == code {
				return true
			}
		}
		return false
	}
	var me *ModelError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
