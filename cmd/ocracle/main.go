package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0   // Every pair reached the threshold
	ExitTestFailed  = 1   // One or more pairs failed or errored
	ExitError       = 2   // Configuration or runtime error
	ExitInterrupted = 130 // Stopped by SIGINT or SIGTERM
)

// TestFailureError indicates that the benchmark ran to completion,
// but one or more model x image pairs failed or errored.
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return e.Message
}

// exitCode maps an error returned by a command onto a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var testFailureErr *TestFailureError
	if errors.As(err, &testFailureErr) {
		return ExitTestFailed
	}
	// All other errors are configuration/runtime errors
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
