package domain

import (
	"errors"
	"strings"
)

// Result codes reported by stores for conflicts callers are expected to branch on.
const (
	ResultDuplicateUserName  = "DuplicateUserName"
	ResultDuplicateRoleName  = "DuplicateRoleName"
	ResultDuplicateID        = "DuplicateID"
	ResultConcurrencyFailure = "ConcurrencyFailure"
)

// ResultError describes why a write did not succeed.
type ResultError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the outcome of a create, update or delete. Conflicts are failed
// results rather than errors.
type Result struct {
	Succeeded bool          `json:"succeeded"`
	Errors    []ResultError `json:"errors,omitempty"`
}

// Success is the result of a write that took effect.
var Success = Result{Succeeded: true}

// Failed builds a failed result.
func Failed(errs ...ResultError) Result {
	return Result{Errors: errs}
}

// Has reports whether the result carries the given error code.
func (r Result) Has(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Err converts a failed result into a conflict error; nil on success.
func (r Result) Err() error {
	if r.Succeeded {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Description)
	}
	msg := ErrConflict.Message
	if len(parts) > 0 {
		msg = strings.Join(parts, "; ")
	}
	return WrapError(ErrCodeConflict, ErrConflict.Message, errors.New(msg))
}
