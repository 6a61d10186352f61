// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

const (
	// ExitOK is returned when the command succeeded.
	ExitOK ExitCode = 0
	// ExitFailure is returned for configuration, discovery and usage failures.
	ExitFailure ExitCode = 1
	// ExitUnresolved is returned when a constraint has no candidate.
	ExitUnresolved ExitCode = 2
	// ExitCycle is returned when required components depend on each other.
	ExitCycle ExitCode = 3
	// ExitEnvConflict is returned when two components disagree on a variable.
	ExitEnvConflict ExitCode = 4
)

type (
	// ExitCode is the process exit status of a cabar command.
	ExitCode int

	// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
	ExitError struct {
		Code ExitCode
		Err  error
	}
)

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
