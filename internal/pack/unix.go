package pack

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/openvpn"
	"github.com/cruciblehq/pqbuild/internal/paths"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/resources"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/source"
)

// Owner recorded for every member of a staged tarball.
const bundleOwner = "root"

// Name of the empty file keeping otherwise empty directories in the bundle.
const placeholder = ".placeholder"

// Packages staged trees.
type Packager struct {
	Runner    *runner.Runner
	Acquirer  *source.Acquirer
	Archiver  archive.Archiver
	Resources resources.Set
}

// Unix packaging parameters.
type UnixOptions struct {
	Stage    openvpn.Tree // Staged install.
	Target   platform.OS  // Linux or Darwin.
	ImageDir string       // Output directory.
	Name     string       // Artifact base name, without extension.
}

// Completes the staged tree for the target and archives it to
// "<image-dir>/<name>.tar.gz".
//
// Returns [ErrMissingInstall] before touching the stage when the tree has
// no sbin directory.
func (p *Packager) Unix(ctx context.Context, opts UnixOptions) (Bundle, error) {
	sbin := opts.Stage.Sbin()
	if !fsutil.IsDir(sbin) {
		return Bundle{}, fmt.Errorf("%w: no sbin in stage (%s), did openvpn make install run?", ErrMissingInstall, sbin)
	}

	switch opts.Target {
	case platform.Linux:
		if err := p.completeLinux(opts.Stage); err != nil {
			return Bundle{}, err
		}
	case platform.Darwin:
		if err := p.install(resources.Privacy, filepath.Join(opts.Stage.Doc(), resources.Privacy), paths.DefaultFileMode); err != nil {
			return Bundle{}, err
		}
	default:
		return Bundle{}, fmt.Errorf("%w: %s", ErrUnsupported, opts.Target)
	}

	dst := filepath.Join(opts.ImageDir, opts.Name+".tar.gz")
	slog.Info("packing staged tree", "stage", opts.Stage.Root, "archive", dst)

	src := archive.Source{Base: opts.Stage.Root, Name: ".", Owner: bundleOwner}
	if err := p.Archiver.Create(ctx, dst, src); err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrPackage, err)
	}

	bundle, err := newBundle(dst)
	if err != nil {
		return Bundle{}, err
	}
	slog.Info("bundle created", "bundle", bundle.Name(), "size", bundle.HumanSize(), "digest", bundle.Digest)
	return bundle, nil
}

// Adds the Linux service layout: placeholder etc and log directories, the
// setup script, the privacy notice, and the systemd unit.
func (p *Packager) completeLinux(stage openvpn.Tree) error {
	for _, dir := range []string{stage.Etc(), stage.Log()} {
		if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrPackage, err)
		}
		if err := os.WriteFile(filepath.Join(dir, placeholder), nil, paths.DefaultFileMode); err != nil {
			return fmt.Errorf("%w: %w", ErrPackage, err)
		}
	}

	installs := []struct {
		name string
		dst  string
		mode os.FileMode
	}{
		{resources.SetupScript, filepath.Join(stage.Sbin(), resources.SetupScript), paths.DefaultExecMode},
		{resources.Privacy, filepath.Join(stage.Doc(), resources.Privacy), paths.DefaultFileMode},
		{resources.ServiceUnit, filepath.Join(stage.SystemdUnits(), p.Resources.Data.Unit()), paths.DefaultFileMode},
	}
	for _, in := range installs {
		if err := p.install(in.name, in.dst, in.mode); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packager) install(name, dst string, mode os.FileMode) error {
	if _, err := p.Resources.WriteAs(name, dst, mode); err != nil {
		return fmt.Errorf("%w: %w", ErrPackage, err)
	}
	slog.Debug("installed resource", "path", dst)
	return nil
}
