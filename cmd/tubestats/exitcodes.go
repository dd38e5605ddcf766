package main

import "fmt"

// Exit codes for the tubestats CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1 // Source could not be loaded or the command failed.
	ExitInvalidArgs = 2 // Bad flags or configuration.
)

// exitCodeError carries the process exit code up to main.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

func exitError(code int, format string, args ...any) *exitCodeError {
	return &exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}
