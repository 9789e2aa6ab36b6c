package model_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/redhat-developer/openshift-checker/internal/model"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		scenario string
		given    error
		sentinel error
		kind     string
		message  string
	}{
		{
			"not found",
			&model.ExecutableNotFoundError{Path: "/opt/doa.linux", OS: "linux", Err: os.ErrNotExist},
			model.ErrExecutableNotFound,
			"executable_not_found",
			"analyzer executable not found: /opt/doa.linux: file does not exist",
		},
		{
			"unsupported os",
			&model.ExecutableNotFoundError{OS: "other", Err: errors.New("unsupported operating system")},
			model.ErrExecutableNotFound,
			"executable_not_found",
			"analyzer executable not found: os other: unsupported operating system",
		},
		{
			"exit code",
			&model.ProcessError{Path: "doa", ExitCode: 1, Stderr: "image not found"},
			model.ErrProcessFailure,
			"process_failure",
			"analyzer process failed: doa: exit code 1: image not found",
		},
		{
			"signal",
			&model.ProcessError{Path: "doa", ExitCode: -1, Signal: "killed"},
			model.ErrProcessFailure,
			"process_failure",
			"analyzer process failed: doa: terminated by signal killed",
		},
		{
			"timeout",
			&model.ProcessError{Path: "doa", ExitCode: -1, TimedOut: true},
			model.ErrProcessFailure,
			"process_failure",
			"analyzer process failed: doa: timed out",
		},
		{
			"malformed",
			&model.MalformedOutputError{Raw: "x", Err: errors.New("empty output")},
			model.ErrMalformedOutput,
			"malformed_output",
			"malformed analyzer output: empty output",
		},
		{
			"cancelled",
			&model.CancelledError{Cause: context.Canceled},
			model.ErrCancelled,
			"cancelled",
			"analysis cancelled: context canceled",
		},
		{
			"invalid",
			fmt.Errorf("%w: empty image id", model.ErrInvalidRequest),
			model.ErrInvalidRequest,
			"invalid_request",
			"invalid request: empty image id",
		},
	}

	sentinels := []error{
		model.ErrExecutableNotFound,
		model.ErrProcessFailure,
		model.ErrMalformedOutput,
		model.ErrCancelled,
		model.ErrInvalidRequest,
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			t.Parallel()
			require.EqualError(t, tt.given, tt.message)
			require.Equal(t, tt.kind, model.Kind(tt.given))
			wrapped := fmt.Errorf("check: %w", tt.given)
			require.Equal(t, tt.kind, model.Kind(wrapped))
			for _, s := range sentinels {
				if s == tt.sentinel {
					require.ErrorIs(t, wrapped, s)
				} else {
					require.NotErrorIs(t, wrapped, s)
				}
			}
		})
	}
	require.Empty(t, model.Kind(nil))
	require.Equal(t, "error", model.Kind(errors.New("boom")))
}
