// Package apperr defines the error taxonomy shared across the pipeline:
// configuration errors, backend errors, filesystem errors, and the lint
// failure sentinel. Lint violations themselves are collected in a report,
// never raised one by one.
package apperr

import (
	"errors"
	"fmt"
)

// ErrLintFailed signals that the notes file did not pass linting. The
// violations have already been reported by the time this is returned.
var ErrLintFailed = errors.New("notes failed lint")

// ConfigError is a fatal configuration problem: a missing required file, a
// template without a declared placeholder, or a malformed shorthand mapping.
type ConfigError struct {
	Path        string // offending file, if any
	Placeholder string // offending placeholder, if any
	Reason      string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Placeholder != "":
		return fmt.Sprintf("config: %s: missing placeholder %s", e.Path, e.Placeholder)
	case e.Path != "":
		return fmt.Sprintf("config: %s: %s", e.Path, e.Reason)
	default:
		return "config: " + e.Reason
	}
}

// BackendError wraps a failed inference call. No automatic retry.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// FSError wraps a failed read, write, or rename.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }
