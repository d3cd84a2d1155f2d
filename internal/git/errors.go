package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGitOperationFailed matches every *CommandError via errors.Is.
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrNothingToCommit is returned when staging reports there is nothing to commit.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNotRepository is returned when no repository encloses the working directory.
	ErrNotRepository = errors.New("not a git repository")
)

// CommandError describes a git subprocess that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

// Error includes the command line and whatever git printed on stderr.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg = fmt.Sprintf("%s (exit %d)", msg, e.ExitCode)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is lets callers test for ErrGitOperationFailed without knowing the concrete type.
func (e *CommandError) Is(target error) bool {
	return target == ErrGitOperationFailed
}
