package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/workdir"
)

// Bytes of suppressed output kept for error reports.
const outputTail = 8 << 10

// External command to run.
type Command struct {
	Args []string // Program and arguments.
	Dir  string   // Working directory, relative to the current stack directory. Empty means the current one.
	Env  Env      // Overrides on top of the inherited environment.
}

// Runs external commands relative to a directory stack.
type Runner struct {
	Exec    Executor        // Process executor. Defaults to [HostExecutor].
	Dirs    *workdir.Stack  // Logical working directory.
	Verbose bool            // Stream child output and echo commands.
	Stdout  io.Writer       // Destination for streamed output. Defaults to os.Stdout.
	Stderr  io.Writer       // Destination for streamed errors. Defaults to os.Stderr.
	Environ func() []string // Base environment. Defaults to os.Environ.
}

// Creates a [Runner] on the host.
func New(dirs *workdir.Stack, verbose bool) *Runner {
	return &Runner{
		Exec:    HostExecutor{},
		Dirs:    dirs,
		Verbose: verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Environ: os.Environ,
	}
}

// Runs cmd and blocks until it exits.
//
// Returns a [*CommandError] when the command exits with a nonzero code.
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	var stdout, stderr io.Writer
	var tail *tailBuffer

	if r.Verbose {
		stdout, stderr = r.stdout(), r.stderr()
	} else {
		tail = newTailBuffer(outputTail)
		stdout, stderr = tail, tail
	}

	return r.execute(ctx, cmd, stdout, stderr, tail)
}

// Runs cmd and returns its standard output with surrounding whitespace
// trimmed. Used to query tools for configuration values (the OpenSSL target
// name, "tar --help", the MSVC environment).
func (r *Runner) Capture(ctx context.Context, cmd Command) (string, error) {
	var out bytes.Buffer
	tail := newTailBuffer(outputTail)

	var stderr io.Writer = tail
	if r.Verbose {
		stderr = io.MultiWriter(r.stderr(), tail)
	}

	if err := r.execute(ctx, cmd, &out, stderr, tail); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// Returns the path of a tool in PATH.
func (r *Runner) LookPath(name string) (string, error) {
	path, err := r.executor().LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
	}
	return path, nil
}

// Checks that every tool a stage needs is in PATH before the stage starts.
// The first missing tool is reported with the stage that needs it.
func (r *Runner) Require(stage string, tools ...string) error {
	for _, tool := range tools {
		path, err := r.LookPath(tool)
		if err != nil {
			return fmt.Errorf("%w; %s needs it, install it or add it to PATH", err, stage)
		}
		slog.Debug("found tool", "tool", tool, "path", path)
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, cmd Command, stdout, stderr io.Writer, tail *tailBuffer) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("%w: empty command", ErrCommandFailed)
	}

	dir := r.Dirs.Current()
	if cmd.Dir != "" {
		dir = r.Dirs.Resolve(cmd.Dir)
	}

	level := slog.LevelDebug
	if r.Verbose {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "running command", "command", strings.Join(cmd.Args, " "), "dir", dir)

	var env []string
	if len(cmd.Env) > 0 {
		env = cmd.Env.Apply(r.environ())
		slog.Debug("environment overrides", "env", describeEnv(cmd.Env))
	}

	code, err := r.executor().Execute(ctx, Process{
		Args:   cmd.Args,
		Dir:    dir,
		Env:    env,
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd.Args[0], err)
	}

	if code != 0 {
		cmdErr := &CommandError{
			Args:     cmd.Args,
			Dir:      dir,
			ExitCode: code,
		}
		if tail != nil {
			cmdErr.Output = tail.String()
		}
		return cmdErr
	}

	return nil
}

func (r *Runner) executor() Executor {
	if r.Exec == nil {
		return HostExecutor{}
	}
	return r.Exec
}

func (r *Runner) environ() []string {
	if r.Environ == nil {
		return os.Environ()
	}
	return r.Environ()
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// Renders overrides as "KEY=value" and "-KEY" (removal) for logging.
func describeEnv(env Env) []string {
	out := env.Apply(nil)
	for k, v := range env {
		if v == nil {
			out = append(out, "-"+k)
		}
	}
	return out
}

// Writer that keeps only the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
