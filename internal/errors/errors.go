package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/schedule"
)

// Exit codes. Requests the schedule rejects exit with ExitRejected so
// scripts can tell them apart from I/O or storage failures.
const (
	ExitFailure  = 1
	ExitRejected = 2
)

// Format prefixes the message with "Error: ".
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}

// ExitCode picks the process exit status for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, schedule.ErrNotFound),
		errors.Is(err, schedule.ErrConflict),
		errors.Is(err, schedule.ErrValidation):
		return ExitRejected
	default:
		return ExitFailure
	}
}

// Fatal logs err, prints it to stderr and exits. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	code := ExitCode(err)
	logger.Error("Command failed", "error", err, "exit", code)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(code)
}

// Fatalf is Fatal with a formatted error; %w wraps as in fmt.Errorf.
func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}
