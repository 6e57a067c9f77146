// Package runnertest provides a scripted [runner.Executor] for tests.
//
// Stage tests exercise the exact command sequence a stage issues without
// launching real toolchains. Handlers are matched by argument prefix in
// registration order; unmatched commands succeed with no output.
package runnertest

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/workdir"
)

// Recorded process invocation.
type Call struct {
	Args []string
	Dir  string
	Env  []string
}

// Joined command line of the call.
func (c Call) String() string {
	return strings.Join(c.Args, " ")
}

// Returns the value of key in the call's environment and whether it is set.
// A call that inherited its environment reports nothing as set.
func (c Call) Getenv(key string) (string, bool) {
	for _, kv := range c.Env {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// Scripted response for commands matching a prefix.
type Handler struct {
	prefix []string
	exit   int
	stdout string
	do     func(p runner.Process) error
}

// Sets the exit code returned for matching commands.
func (h *Handler) Exit(code int) *Handler {
	h.exit = code
	return h
}

// Sets the standard output written for matching commands.
func (h *Handler) Output(stdout string) *Handler {
	h.stdout = stdout
	return h
}

// Sets a side effect run for matching commands, before output is written.
// Returning an error makes the executor fail as if the process could not be
// started.
func (h *Handler) Do(fn func(p runner.Process) error) *Handler {
	h.do = fn
	return h
}

// Scripted executor.
type Fake struct {
	mu       sync.Mutex
	handlers []*Handler
	calls    []Call
	missing  map[string]bool
}

// Makes the named tools absent from PATH. Every other tool is found.
func (f *Fake) Missing(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.missing == nil {
		f.missing = make(map[string]bool)
	}
	for _, name := range names {
		f.missing[name] = true
	}
}

// Implements [runner.Executor]. Lookups are not recorded as calls.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.missing[name] {
		return "", exec.ErrNotFound
	}
	return "/usr/bin/" + name, nil
}

// Registers a handler for commands whose arguments start with prefix.
func (f *Fake) On(prefix ...string) *Handler {
	f.mu.Lock()
	defer f.mu.Unlock()

	h := &Handler{prefix: prefix}
	f.handlers = append(f.handlers, h)
	return h
}

// Implements [runner.Executor].
func (f *Fake) Execute(ctx context.Context, p runner.Process) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Args: append([]string(nil), p.Args...),
		Dir:  p.Dir,
		Env:  append([]string(nil), p.Env...),
	})
	h := f.match(p.Args)
	f.mu.Unlock()

	if h == nil {
		return 0, nil
	}
	if h.do != nil {
		if err := h.do(p); err != nil {
			return 0, err
		}
	}
	if h.stdout != "" && p.Stdout != nil {
		io.WriteString(p.Stdout, h.stdout)
	}
	return h.exit, nil
}

// Returns all recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Returns the joined command lines of all recorded calls.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Returns the first recorded call starting with prefix.
func (f *Fake) Find(prefix ...string) (Call, bool) {
	for _, c := range f.Calls() {
		if hasPrefix(c.Args, prefix) {
			return c, true
		}
	}
	return Call{}, false
}

// Reports whether any recorded call starts with prefix.
func (f *Fake) Ran(prefix ...string) bool {
	_, ok := f.Find(prefix...)
	return ok
}

func (f *Fake) match(args []string) *Handler {
	for _, h := range f.handlers {
		if hasPrefix(args, h.prefix) {
			return h
		}
	}
	return nil
}

func hasPrefix(args, prefix []string) bool {
	if len(prefix) > len(args) {
		return false
	}
	for i := range prefix {
		if args[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Creates a runner rooted at base that executes through a new [Fake].
func New(t *testing.T, base string) (*runner.Runner, *Fake) {
	t.Helper()

	dirs, err := workdir.New(base)
	if err != nil {
		t.Fatalf("workdir.New(%s): %v", base, err)
	}

	fake := &Fake{}
	r := &runner.Runner{
		Exec:    fake,
		Dirs:    dirs,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		Environ: func() []string { return []string{"PATH=/usr/bin:/bin", "HOME=/root"} },
	}
	return r, fake
}
