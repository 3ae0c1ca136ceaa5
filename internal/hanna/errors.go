package hanna

import "fmt"

// UpdateFailed is the single failure kind surfaced by data-fetch operations.
// Everything below the coordinator boundary (auth rejection, timeouts,
// transport errors, bad status codes, unparseable payloads) is normalized
// into it so callers only branch on one type.
type UpdateFailed struct {
	Reason string
	Err    error
}

func (e *UpdateFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *UpdateFailed) Unwrap() error { return e.Err }

func failf(format string, args ...any) *UpdateFailed {
	return &UpdateFailed{Reason: fmt.Sprintf(format, args...)}
}

// WrapUpdateFailed passes recognized UpdateFailed errors through unchanged
// and wraps anything else, so a refresh cycle always reports one kind.
func WrapUpdateFailed(err error) *UpdateFailed {
	if err == nil {
		return nil
	}
	if uf, ok := err.(*UpdateFailed); ok {
		return uf
	}
	return &UpdateFailed{Reason: "error communicating with API", Err: err}
}
