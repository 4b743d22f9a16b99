package errors

import (
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/logger"
	"github.com/julianstephens/tracklit/internal/storage"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitNotFound     = 2
	ExitInvalidInput = 3
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// ExitCode maps an error to the process exit code for it.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, lifecycle.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, lifecycle.ErrInvalidInput):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}

// Report logs err, prints it to w and returns its exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
	return ExitCode(err)
}
