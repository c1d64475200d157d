package testrun

import (
	"errors"
	"fmt"
)

// Exit codes of the test-run binary.
const (
	ExitSuccess        = 0
	ExitEnvironment    = 1
	ExitUsage          = 2
	ExitPathValidation = 4
	ExitTestsFailed    = 8
)

// EnvError is an unmanaged environment failure (exit code 1): temp space
// missing, an I/O error below a readable directory, and the like.
type EnvError struct {
	Err error
}

func (e *EnvError) Error() string {
	return e.Err.Error()
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

func NewEnvError(err error) *EnvError {
	return &EnvError{Err: err}
}

// IsEnvError checks if the error is or wraps an EnvError.
func IsEnvError(err error) bool {
	var envErr *EnvError
	return err != nil && errors.As(err, &envErr)
}

// UsageError is a parameter validation failure (exit code 2): a bad option
// value, an unknown validation category, conflicting flags.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func NewUsageError(err error) *UsageError {
	return &UsageError{Err: err}
}

// IsUsageError checks if the error is or wraps a UsageError.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return err != nil && errors.As(err, &usageErr)
}

// PathError is a path validation failure (exit code 4): a missing or
// misnamed argument the policy halts on, or an empty resolution.
type PathError struct {
	Err error
}

func (e *PathError) Error() string {
	return e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func NewPathError(err error) *PathError {
	return &PathError{Err: err}
}

// IsPathError checks if the error is or wraps a PathError.
func IsPathError(err error) bool {
	var pathErr *PathError
	return err != nil && errors.As(err, &pathErr)
}

// TestsFailedError reports that tests ran and some failed (exit code 8).
type TestsFailedError struct {
	Failed int
}

func (e *TestsFailedError) Error() string {
	return fmt.Sprintf("%d test(s) failed", e.Failed)
}

// IsTestsFailedError checks if the error is or wraps a TestsFailedError.
func IsTestsFailedError(err error) bool {
	var failedErr *TestsFailedError
	return err != nil && errors.As(err, &failedErr)
}

// ExitCode maps an error from a run to the process exit status. Errors with
// no class attached count as usage errors, since the only way to produce one
// is a command line the flag parser rejected.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case IsTestsFailedError(err):
		return ExitTestsFailed
	case IsPathError(err):
		return ExitPathValidation
	case IsEnvError(err):
		return ExitEnvironment
	case IsUsageError(err):
		return ExitUsage
	}

	return ExitUsage
}
