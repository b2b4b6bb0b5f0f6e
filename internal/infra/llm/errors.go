package llm

import (
	"errors"
	"fmt"
)

// Request validation sentinels. These are caller mistakes, not backend
// failures, so they are distinct from *BackendError.
var (
	ErrEmptyText    = errors.New("llm: embedding text must not be empty")
	ErrEmptyMessage = errors.New("llm: chat message must not be empty")
)

// ConfigError reports invalid construction-time configuration: an
// unknown backend tag or a malformed base URL. It is never returned
// after New succeeds.
type ConfigError struct {
	Field  string // "backend" | "location"
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("llm config: %s %q: %s", e.Field, e.Value, e.Reason)
}

// BackendError reports a failure talking to the selected backend:
// transport errors, non-2xx HTTP status, malformed response bodies, or
// a non-zero process exit. Host-initiated cancellation is NOT a
// BackendError — it surfaces as the context's own error.
type BackendError struct {
	Op      string // "chat" | "embed" | "list-models"
	Backend string // backend tag the adapter was built with
	Status  int    // HTTP status code, 0 when not applicable
	Stderr  string // child process stderr, empty when not applicable
	Err     error  // underlying cause, may be nil for status-only errors
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("llm %s: %s backend", e.Op, e.Backend)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *BackendError) Unwrap() error { return e.Err }
