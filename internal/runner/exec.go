package runner

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// Process to be started by an [Executor].
type Process struct {
	Args   []string  // Program and arguments. Args[0] is looked up in PATH.
	Dir    string    // Absolute working directory.
	Env    []string  // Full environment, or nil to inherit.
	Stdout io.Writer // Destination for standard output.
	Stderr io.Writer // Destination for standard error.
}

// Starts a process and waits for it to exit.
//
// A process that ran and exited returns its exit code with a nil error,
// whatever the code. An error is returned only when the process could not be
// started or waited on.
type Executor interface {
	Execute(ctx context.Context, p Process) (int, error)

	// Returns the path of the named program, or an error if it cannot be
	// found in PATH.
	LookPath(name string) (string, error)
}

// Executes processes on the host with os/exec.
type HostExecutor struct{}

// Searches PATH on the host.
func (HostExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Runs p to completion on the host.
func (HostExecutor) Execute(ctx context.Context, p Process) (int, error) {
	cmd := exec.CommandContext(ctx, p.Args[0], p.Args[1:]...)
	cmd.Dir = p.Dir
	cmd.Env = p.Env
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
