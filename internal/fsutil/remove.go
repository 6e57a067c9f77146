package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Removal primitive, replaced in tests.
var removeAll = os.RemoveAll

// Removes path and everything below it.
//
// A path that does not exist is not an error. If the first attempt fails on
// permissions, owner write permission (and read/search permission on
// directories) is restored throughout the tree and the removal is retried
// once. Any other failure, or a failure of the retry, returns [ErrRemove].
func RemoveAll(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	err := removeAll(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s: %w", ErrRemove, path, err)
	}

	slog.Debug("repairing permissions before retrying removal", "path", path, "error", err)

	if repairErr := makeRemovable(path); repairErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemove, path, repairErr)
	}

	if err := removeAll(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemove, path, err)
	}
	return nil
}

// Recursively grants the owner write permission on every entry, plus read
// and search permission on directories, so that the tree can be deleted.
// Symlinks are not followed.
func makeRemovable(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil
	}

	mode := info.Mode().Perm()
	want := mode | 0200
	if info.IsDir() {
		want |= 0500
	}
	if want != mode || !writable(path) {
		if err := os.Chmod(path, want); err != nil {
			return err
		}
	}

	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := makeRemovable(filepath.Join(path, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
