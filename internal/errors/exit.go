package errors

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitCommandFailed = 2
	ExitAborted       = 3
	ExitCancelled     = 130
)

// ExitError carries a process exit code without an error message.
// Used when the outcome has already been reported to the operator.
type ExitError struct {
	Code int
}

// NewExitError returns an ExitError for the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if IsCode(err, ErrCancelled) {
		return ExitCancelled
	}

	return ExitFailure
}

// IsSilent reports whether err should be reported by exit code only.
func IsSilent(err error) bool {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return true
	}
	return IsCode(err, ErrCancelled)
}
