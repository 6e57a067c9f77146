package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/opencontainers/go-digest"
)

// Suffix of cache archives.
const archiveExt = ".tar.gz"

// Suffix of digest sidecars, appended to the archive name.
const digestExt = ".sha256"

// Cache archive of a source directory.
type CacheEntry struct {
	Dir     string        // Source directory name.
	Archive string        // Path to "<dir>.tar.gz".
	Sidecar string        // Path to "<dir>.tar.gz.sha256".
	Digest  digest.Digest // Archive digest, set once stored.
	Size    int64         // Archive size in bytes, set once stored.
}

// Fetches repositories and manages their cache archives.
type Acquirer struct {
	Runner     *runner.Runner   // Runs git.
	SourcesDir string           // Directory holding clones and cache archives.
	Archiver   archive.Archiver // Creates and extracts cache archives.
}

// Returns the cache entry for the source directory dir.
func (a *Acquirer) Entry(dir string) CacheEntry {
	archivePath := filepath.Join(a.SourcesDir, dir+archiveExt)
	return CacheEntry{
		Dir:     dir,
		Archive: archivePath,
		Sidecar: archivePath + digestExt,
	}
}

// Clones repo into the sources directory, or updates an existing clone.
//
// An existing unpinned clone is updated with "git pull". An existing pinned
// clone is refused with [ErrPinnedExists]. Otherwise the branch is cloned
// and, when pinned, the commit checked out. Returns the clone directory.
func (a *Acquirer) CloneOrRestore(ctx context.Context, repo Repository) (string, error) {
	if err := repo.Validate(); err != nil {
		return "", err
	}

	dir := repo.LocalDir()
	clone := filepath.Join(a.SourcesDir, dir)

	info, err := os.Stat(clone)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("%w: %s exists and is not a directory", ErrAcquire, clone)

	case err == nil && repo.Pinned():
		return "", fmt.Errorf("%w: %s is pinned to %s and already present in %s; clean the sources directory (%s) or use --skip-download",
			ErrPinnedExists, repo.Name, repo.Commit, clone, a.SourcesDir)

	case err == nil:
		slog.Info("updating repository", "repo", repo.String(), "dir", clone)
		if err := a.git(ctx, clone, "pull"); err != nil {
			return "", err
		}
		return clone, nil

	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	slog.Info("cloning repository", "repo", repo.String(), "url", repo.URL)

	if err := os.MkdirAll(a.SourcesDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	args := []string{"clone"}
	if !a.Runner.Verbose {
		args = append(args, "-q")
	}
	if repo.Branch != "" {
		args = append(args, "--branch", repo.Branch)
	}
	args = append(args, repo.URL, dir)

	if err := a.git(ctx, a.SourcesDir, args...); err != nil {
		return "", err
	}

	if !repo.Pinned() {
		return clone, nil
	}

	if info, err := os.Stat(clone); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: clone of %s did not create %s", ErrAcquire, repo.Name, clone)
	}
	if err := a.git(ctx, clone, "checkout", repo.Commit); err != nil {
		return "", err
	}
	return clone, nil
}

// Archives the source directory dir to its cache archive and writes the
// digest sidecar.
func (a *Acquirer) Store(ctx context.Context, dir string) (CacheEntry, error) {
	entry := a.Entry(dir)

	err := a.Archiver.Create(ctx, entry.Archive, archive.Source{Base: a.SourcesDir, Name: dir})
	if err != nil {
		return entry, fmt.Errorf("%w: storing %s: %w", ErrAcquire, dir, err)
	}

	d, size, err := archive.DigestFile(entry.Archive)
	if err != nil {
		return entry, fmt.Errorf("%w: digesting %s: %w", ErrAcquire, entry.Archive, err)
	}
	if err := os.WriteFile(entry.Sidecar, []byte(d.String()+"\n"), 0644); err != nil {
		return entry, fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	entry.Digest, entry.Size = d, size
	slog.Debug("stored cache archive", "dir", dir, "archive", entry.Archive, "digest", d)
	return entry, nil
}

// Extracts the cache archive of dir into dest.
//
// A missing archive is logged as a warning and is not an error; the stage
// that needs the tree reports its absence. When a digest sidecar exists the
// archive must match it, otherwise [ErrCacheCorrupt] is returned.
func (a *Acquirer) Restore(ctx context.Context, dir, dest string) error {
	entry := a.Entry(dir)

	if _, err := os.Stat(entry.Archive); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no cache archive available in the sources directory", "archive", filepath.Base(entry.Archive), "sources", a.SourcesDir)
		return nil
	}

	if err := verify(entry); err != nil {
		return err
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	slog.Info("restoring sources", "dir", dir, "dest", dest)
	if err := a.Archiver.Extract(ctx, entry.Archive, dest); err != nil {
		return fmt.Errorf("%w: restoring %s: %w", ErrAcquire, dir, err)
	}
	return nil
}

// Clones or updates every repository in order, then stores a cache archive
// for each.
func (a *Acquirer) Download(ctx context.Context, repos []Repository) ([]CacheEntry, error) {
	if err := a.Runner.Require("downloading sources", "git"); err != nil {
		return nil, err
	}

	slog.Info("downloading sources", "sources", a.SourcesDir, "repositories", len(repos))

	for _, repo := range repos {
		if _, err := a.CloneOrRestore(ctx, repo); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(repos))
	entries := make([]CacheEntry, 0, len(repos))
	for _, repo := range repos {
		dir := repo.LocalDir()
		if seen[dir] {
			continue
		}
		seen[dir] = true

		entry, err := a.Store(ctx, dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (a *Acquirer) git(ctx context.Context, dir string, args ...string) error {
	err := a.Runner.Run(ctx, runner.Command{
		Args: append([]string{"git"}, args...),
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	return nil
}

// Checks the archive against its sidecar. Archives without a sidecar are
// accepted unverified.
func verify(entry CacheEntry) error {
	raw, err := os.ReadFile(entry.Sidecar)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("cache archive has no digest, skipping verification", "archive", entry.Archive)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}

	want, err := digest.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCacheCorrupt, entry.Sidecar, err)
	}

	f, err := os.Open(entry.Archive)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	defer f.Close()

	got, err := want.Algorithm().FromReader(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s is %s, sidecar records %s", ErrCacheCorrupt, entry.Archive, got, want)
	}
	return nil
}
