// Package workdir tracks the logical working directory of the pipeline.
//
// Stages run tools that expect to be started from a particular directory.
// Rather than mutating the process-wide working directory, the pipeline
// keeps an explicit stack of directories: [Stack.Within] pushes a directory
// for the duration of a function and always pops it again, on error and on
// panic alike. External commands take the top of the stack as their working
// directory.
package workdir

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Stack of entered directories. The zero value is not usable; create one
// with [New].
type Stack struct {
	dirs []string
}

// Creates a stack rooted at base. A relative base is made absolute against
// the process working directory.
func New(base string) (*Stack, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return &Stack{dirs: []string{abs}}, nil
}

// Returns the directory at the top of the stack.
func (s *Stack) Current() string {
	return s.dirs[len(s.dirs)-1]
}

// Returns the number of entered directories, excluding the base.
func (s *Stack) Depth() int {
	return len(s.dirs) - 1
}

// Resolves path against the current directory. Absolute paths are returned
// cleaned.
func (s *Stack) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.Current(), path)
}

// Enters dir, runs fn, and returns to the previous directory.
//
// dir is resolved against the current directory and must be an existing
// directory. The previous directory is restored before Within returns,
// including when fn panics.
func (s *Stack) Within(dir string, fn func() error) error {
	target := s.Resolve(dir)

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("entering %s: %w", target, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("entering %s: not a directory", target)
	}

	s.dirs = append(s.dirs, target)
	defer s.pop()

	slog.Debug("entering directory", "dir", target, "depth", s.Depth())

	return fn()
}

func (s *Stack) pop() {
	s.dirs = s.dirs[:len(s.dirs)-1]
}
