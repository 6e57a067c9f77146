package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

var (
	ErrCommandFailed = errors.New("command failed")
	ErrToolNotFound  = fmt.Errorf("required tool not found: %w", errdefs.ErrNotFound)
)

// Describes an external command that exited with a nonzero code.
type CommandError struct {
	Args     []string // Command line that was run.
	Dir      string   // Directory the command ran in.
	ExitCode int      // Exit code of the process.
	Output   string   // Tail of the suppressed output, empty in verbose mode.
}

// Formats the failing command, directory, and exit code, followed by the
// captured output tail when there is one.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("running command %s in %s failed with exit code %d",
		strings.Join(e.Args, " "), e.Dir, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

// Allows errors.Is(err, ErrCommandFailed).
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}
