package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// In-process archiver.
type Builtin struct{}

// Implements [Archiver].
//
// The archive is written to a temporary file next to dst and renamed into
// place once complete, so an interrupted run never leaves a truncated
// archive under the final name.
func (Builtin) Create(ctx context.Context, dst string, src Source) error {
	root := filepath.Join(src.Base, src.Name)
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeArchive(ctx, tmp, root, src); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrCreate, dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	slog.Debug("archive created", "path", dst, "base", src.Base, "name", src.Name)
	return nil
}

func writeArchive(ctx context.Context, w io.Writer, root string, src Source) error {
	gz, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(gz)

	if err := writeTree(ctx, tw, root, src); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

// Writes the tree at root to tw, naming members after src.Name.
func writeTree(ctx context.Context, tw *tar.Writer, root string, src Source) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		name := memberName(src.Name, rel)
		if name == "" {
			return nil
		}
		return writeTarEntry(tw, p, name, d, src.Owner)
	})
}

// Returns the archive member name for rel below name. The root of a "."
// archive has no member of its own.
func memberName(name, rel string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	rel = filepath.ToSlash(rel)

	if name == "." {
		if rel == "." {
			return ""
		}
		return "./" + rel
	}
	return path.Join(name, rel)
}

// Writes a single file, directory, or symlink entry to tw.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d fs.DirEntry, owner string) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(hostPath); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	header.Name = archivePath
	if info.IsDir() {
		header.Name += "/"
	}
	if owner != "" {
		header.Uid, header.Gid = 0, 0
		header.Uname, header.Gname = owner, owner
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Implements [Archiver].
func (Builtin) Extract(ctx context.Context, src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtract, src, err)
	}
	defer gz.Close()

	if err := extractTar(ctx, tar.NewReader(gz), dest); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtract, src, err)
	}

	slog.Debug("archive extracted", "path", src, "dest", dest)
	return nil
}

func extractTar(ctx context.Context, tr *tar.Reader, dest string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}

		if err := extractEntry(tr, header, dest, target); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, header *tar.Header, dest, target string) error {
	mode := fs.FileMode(header.Mode).Perm()

	switch header.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0700); err != nil {
			return err
		}
		return os.Chmod(target, mode|0700)

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		os.Remove(target)
		return os.Symlink(header.Linkname, target)

	case tar.TypeLink:
		source, err := safeJoin(dest, header.Linkname)
		if err != nil {
			return err
		}
		os.Remove(target)
		return os.Link(source, target)

	default:
		slog.Debug("skipping archive member", "name", header.Name, "type", header.Typeflag)
		return nil
	}
}

// Joins name to dest, rejecting names that resolve outside dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))

	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}
