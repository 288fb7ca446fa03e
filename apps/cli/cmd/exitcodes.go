package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for the request CLI
const (
	// ExitSuccess indicates the response was OK
	ExitSuccess = 0

	// ExitRequestFailed indicates a response arrived but was not OK, or a
	// check on it failed
	ExitRequestFailed = 1

	// ExitConfigError indicates a configuration or env file error
	ExitConfigError = 3

	// ExitNetworkError indicates no response was received
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries a process exit code. A nil err means the failure was
// already reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
// Errors without an explicit code are usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

// reported tells whether err has already been shown to the user
func reported(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.err == nil
}
