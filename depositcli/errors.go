// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"fmt"
)

// ResolutionError is returned when no runnable form of the deposit cli could be found
// or the interpreter dependencies could not be installed. It is fatal to the current operation.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return "resolve deposit cli: " + e.Reason
	}

	return "resolve deposit cli: " + e.Reason + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Failure is returned when the deposit cli ran and exited with a non-zero status.
// Stderr is captured verbatim, interpreting it is left to the caller.
type Failure struct {
	Subcommand Subcommand
	ExitCode   int
	Stderr     string
	Stdout     string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("deposit cli %s exited with status %d", f.Subcommand, f.ExitCode)
}
