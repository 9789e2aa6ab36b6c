package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrExecutableNotFound = errors.New("analyzer executable not found")
	ErrProcessFailure     = errors.New("analyzer process failed")
	ErrMalformedOutput    = errors.New("malformed analyzer output")
	ErrCancelled          = errors.New("analysis cancelled")
)

// ExecutableNotFoundError is returned when the analyzer binary can't be
// resolved or is not executable.
type ExecutableNotFoundError struct {
	Path string // empty if the OS is not supported
	OS   string
	Err  error
}

func (e *ExecutableNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: os %s: %v", ErrExecutableNotFound, e.OS, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrExecutableNotFound, e.Path, e.Err)
}

func (e *ExecutableNotFoundError) Is(target error) bool { return target == ErrExecutableNotFound }
func (e *ExecutableNotFoundError) Unwrap() error         { return e.Err }

// ProcessError describes an analyzer run which did not exit cleanly.
type ProcessError struct {
	Path     string
	ExitCode int    // -1 when terminated by a signal or never started
	Signal   string // name of the terminating signal, if any
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *ProcessError) Error() string {
	var reason string
	switch {
	case e.TimedOut:
		reason = "timed out"
	case e.Signal != "":
		reason = "terminated by signal " + e.Signal
	case e.ExitCode > 0:
		reason = fmt.Sprintf("exit code %d", e.ExitCode)
	default:
		reason = fmt.Sprintf("%v", e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s: %s: %s", ErrProcessFailure, e.Path, reason, e.Stderr)
	}
	return fmt.Sprintf("%s: %s: %s", ErrProcessFailure, e.Path, reason)
}

func (e *ProcessError) Is(target error) bool { return target == ErrProcessFailure }
func (e *ProcessError) Unwrap() error         { return e.Err }

// MalformedOutputError is returned when stdout is not a JSON array of findings.
type MalformedOutputError struct {
	Raw string // possibly truncated
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedOutput, e.Err)
}

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }
func (e *MalformedOutputError) Unwrap() error         { return e.Err }

// CancelledError is returned when the caller cancelled the check.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause == nil {
		return ErrCancelled.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCancelled, e.Cause)
}

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }
func (e *CancelledError) Unwrap() error         { return e.Cause }

// Kind returns a short name of the error class, used in logs and reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrExecutableNotFound):
		return "executable_not_found"
	case errors.Is(err, ErrProcessFailure):
		return "process_failure"
	case errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
