package workdir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWithinRestoresOnSuccess(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "a"), 0755); err != nil {
		t.Fatal(err)
	}

	s, err := New(base)
	if err != nil {
		t.Fatal(err)
	}

	var inside string
	err = s.Within("a", func() error {
		inside = s.Current()
		return nil
	})
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	if inside != filepath.Join(base, "a") {
		t.Errorf("inside = %q, want %q", inside, filepath.Join(base, "a"))
	}
	if s.Current() != base || s.Depth() != 0 {
		t.Errorf("after Within: current = %q depth = %d", s.Current(), s.Depth())
	}
}

func TestWithinRestoresOnError(t *testing.T) {
	base := t.TempDir()
	s, _ := New(base)

	want := errors.New("stage failed")
	err := s.Within(".", func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d after error, want 0", s.Depth())
	}
}

func TestWithinRestoresOnPanic(t *testing.T) {
	base := t.TempDir()
	s, _ := New(base)

	func() {
		defer func() { recover() }()
		s.Within(".", func() error { panic("compiler exploded") })
	}()

	if s.Current() != base {
		t.Fatalf("current = %q after panic, want %q", s.Current(), base)
	}
}

func TestWithinNested(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	s, _ := New(base)

	err := s.Within("a", func() error {
		return s.Within("b", func() error {
			if s.Depth() != 2 {
				t.Errorf("depth = %d, want 2", s.Depth())
			}
			if s.Current() != filepath.Join(base, "a", "b") {
				t.Errorf("current = %q", s.Current())
			}
			return nil
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
}

func TestWithinMissingDirectory(t *testing.T) {
	s, _ := New(t.TempDir())

	called := false
	err := s.Within("missing", func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error entering missing directory")
	}
	if called {
		t.Fatal("fn ran for missing directory")
	}
	if s.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", s.Depth())
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	s, _ := New(base)

	if got := s.Resolve("x/y"); got != filepath.Join(base, "x", "y") {
		t.Errorf("Resolve(relative) = %q", got)
	}
	abs := filepath.Join(base, "abs", "..", "abs")
	if got := s.Resolve(abs); got != filepath.Join(base, "abs") {
		t.Errorf("Resolve(absolute) = %q", got)
	}
}
