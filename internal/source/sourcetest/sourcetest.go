// Package sourcetest seeds source caches for stage tests.
package sourcetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/source"
)

// Creates an acquirer with a fresh sources directory, using the builtin
// archiver and r for git.
func New(t *testing.T, r *runner.Runner) *source.Acquirer {
	t.Helper()
	return &source.Acquirer{Runner: r, SourcesDir: t.TempDir(), Archiver: archive.Builtin{}}
}

// Writes files (slash-separated path to content) below a source directory
// named dir and stores its cache archive. The clone is removed afterwards,
// so only the archive remains, as after a download.
func Seed(t *testing.T, a *source.Acquirer, dir string, files map[string]string) {
	t.Helper()

	root := filepath.Join(a.SourcesDir, dir)
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0755); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := a.Store(context.Background(), dir); err != nil {
		t.Fatalf("storing %s: %v", dir, err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
}
