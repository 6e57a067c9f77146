package pack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/runner"
)

// Installer build script and its source cache, relative to the
// openvpn-build tree.
const (
	nsisDir       = "windows-nsis"
	buildComplete = "./windows-nsis/build-complete"
)

// Source tree packed into a tarball for the installer build.
type Tarball struct {
	Dir  string // Source directory below the build directory.
	Name string // Tarball file name expected by the installer scripts.
}

// Windows packaging parameters.
type WindowsOptions struct {
	BuildDir  string    // Directory holding the restored trees.
	ImageDir  string    // Output directory.
	BuildTree string    // openvpn-build directory name.
	GUITree   string    // openvpn-gui directory name.
	Tarballs  []Tarball // Locally built components handed to the installer.
	Installer string    // Installer file name produced by build-complete.
}

// Builds the NSIS installer and moves it to the image directory.
//
// Cached tarballs of the locally built components are evicted from the
// installer's source cache and replaced with fresh ones, so stale sources
// are never packaged. Other cached tarballs stay to avoid downloading them
// on every build.
func (p *Packager) Windows(ctx context.Context, opts WindowsOptions) (Bundle, error) {
	if err := p.Runner.Require("the installer build", "autoreconf"); err != nil {
		return Bundle{}, err
	}

	for _, dir := range []string{opts.BuildTree, opts.GUITree} {
		if err := p.Acquirer.Restore(ctx, dir, opts.BuildDir); err != nil {
			return Bundle{}, err
		}
		if !fsutil.IsDir(filepath.Join(opts.BuildDir, dir)) {
			return Bundle{}, fmt.Errorf("%w: %s", ErrMissingSource, filepath.Join(opts.BuildDir, dir))
		}
	}

	gui := filepath.Join(opts.BuildDir, opts.GUITree)
	err := p.Runner.Dirs.Within(gui, func() error {
		return p.run(ctx, runner.Command{Args: []string{"autoreconf", "-i", "-v", "-f"}})
	})
	if err != nil {
		return Bundle{}, err
	}

	buildTree := filepath.Join(opts.BuildDir, opts.BuildTree)
	cache := filepath.Join(buildTree, nsisDir, "sources")
	if err := os.MkdirAll(cache, 0755); err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrPackage, err)
	}

	for _, tb := range opts.Tarballs {
		if err := p.refreshTarball(ctx, cache, opts.BuildDir, tb); err != nil {
			return Bundle{}, err
		}
	}

	err = p.Runner.Dirs.Within(buildTree, func() error {
		return p.run(ctx, runner.Command{Args: []string{buildComplete}})
	})
	if err != nil {
		return Bundle{}, err
	}

	produced := filepath.Join(buildTree, nsisDir, opts.Installer)
	dst := filepath.Join(opts.ImageDir, opts.Installer)
	if err := move(produced, dst); err != nil {
		return Bundle{}, fmt.Errorf("%w: collecting installer: %w", ErrPackage, err)
	}

	bundle, err := newBundle(dst)
	if err != nil {
		return Bundle{}, err
	}
	slog.Info("installer created", "bundle", bundle.Name(), "size", bundle.HumanSize(), "digest", bundle.Digest)
	return bundle, nil
}

// Replaces the cached tarball of a locally built component.
func (p *Packager) refreshTarball(ctx context.Context, cache, buildDir string, tb Tarball) error {
	dst := filepath.Join(cache, tb.Name)

	removed, err := fsutil.RemoveIfExists(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPackage, err)
	}
	if removed {
		slog.Info("removed cached tarball from the installer sources", "tarball", tb.Name)
	}

	if !fsutil.IsDir(filepath.Join(buildDir, tb.Dir)) {
		return fmt.Errorf("%w: %s", ErrMissingSource, filepath.Join(buildDir, tb.Dir))
	}
	if err := p.Archiver.Create(ctx, dst, archive.Source{Base: buildDir, Name: tb.Dir}); err != nil {
		return fmt.Errorf("%w: %w", ErrPackage, err)
	}
	return nil
}

func (p *Packager) run(ctx context.Context, cmd runner.Command) error {
	if err := p.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrPackage, err)
	}
	return nil
}

// Moves src to dst, copying across filesystems.
func move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := fsutil.CopyFile(src, dst, 0); err != nil {
		return err
	}
	return os.Remove(src)
}
