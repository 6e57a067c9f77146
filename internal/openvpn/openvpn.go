package openvpn

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/openssl"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/source"
)

// mingw toolchain for Windows targets.
const (
	windowsHost  = "i686-w64-mingw32"
	windowsBuild = "i686-pc-linux-gnu"
)

// Toolchain selection for building Windows binaries with mingw.
var crossEnv = runner.Env{
	"CHOST":  runner.Value(windowsHost),
	"CBUILD": runner.Value(windowsBuild),
}

// Build parameters.
type Options struct {
	Source       string        // Source directory name, as in the cache.
	BuildDir     string        // Directory the source is restored into.
	Stage        Tree          // Install destination.
	Dependency   openssl.Paths // OpenSSL to build against.
	Target       platform.OS   // Target operating system.
	SpecialBuild string        // Value of --with-special-build.
	ExtraLibs    []string      // Appended to OPENSSL_LIBS.
	SharedLibs   []string      // Globs of dependency libraries copied into the tree.
}

// Builds OpenVPN.
type Builder struct {
	Runner   *runner.Runner
	Acquirer *source.Acquirer
}

// Checks preconditions, restores the sources, builds, and installs into
// the stage. Returns the staged tree.
func (b *Builder) Build(ctx context.Context, opts Options) (Tree, error) {
	if err := checkDependency(opts); err != nil {
		return Tree{}, err
	}
	if err := b.Runner.Require("the openvpn build", "autoreconf", "make"); err != nil {
		return Tree{}, err
	}

	if err := b.Acquirer.Restore(ctx, opts.Source, opts.BuildDir); err != nil {
		return Tree{}, err
	}

	tree := filepath.Join(opts.BuildDir, opts.Source)
	if !fsutil.IsDir(tree) {
		return Tree{}, fmt.Errorf("%w: %s; run without --skip-download or provide %s.tar.gz in the sources directory", ErrMissingSource, tree, opts.Source)
	}

	slog.Info("building openvpn", "target", opts.Target, "source", tree, "prefix", opts.Stage.Prefix)

	env := buildEnv(opts)
	steps := []runner.Command{
		{Args: []string{"autoreconf", "-i", "-f", "-v"}},
		{Args: []string{
			"./configure",
			"--prefix=" + opts.Stage.Prefix,
			"--disable-plugins",
			"--with-special-build=" + opts.SpecialBuild,
		}, Env: env},
		{Args: []string{"make"}, Env: env},
		{Args: []string{"make", "install", "DESTDIR=" + opts.Stage.Root}},
	}

	err := b.Runner.Dirs.Within(tree, func() error {
		for _, step := range steps {
			if err := b.Runner.Run(ctx, step); err != nil {
				return fmt.Errorf("%w: %w", ErrBuild, err)
			}
		}
		return nil
	})
	if err != nil {
		return Tree{}, err
	}

	if err := copySharedLibs(opts); err != nil {
		return Tree{}, err
	}

	slog.Info("openvpn installed", "stage", opts.Stage.Root)
	return opts.Stage, nil
}

// Verifies that the OpenSSL installation the build links against exists.
// Windows targets additionally need the DLLs built on a Windows host.
func checkDependency(opts Options) error {
	for _, dir := range []string{opts.Dependency.Lib, opts.Dependency.Include} {
		if !fsutil.IsDir(dir) {
			return fmt.Errorf("%w: did not find %s; build openssl first or drop --skip-openssl", ErrMissingDependency, dir)
		}
	}

	if opts.Target == platform.Windows {
		dlls := opts.Stage.DLLs("x86")
		if !fsutil.IsDir(dlls) {
			return fmt.Errorf("%w: did not find %s; copy the Windows-built openssl DLLs there first", ErrMissingDependency, dlls)
		}
	}
	return nil
}

// Returns the environment overrides for configure and make.
func buildEnv(opts Options) runner.Env {
	libs := []string{"-L" + opts.Dependency.Lib}
	if opts.Target == platform.Linux {
		libs = append(libs, "-Wl,-rpath="+strings.TrimSuffix(opts.Stage.Prefix, "/")+"/lib")
	}
	libs = append(libs, "-lssl", "-lcrypto")
	libs = append(libs, opts.ExtraLibs...)

	env := runner.Env{
		"OPENSSL_CFLAGS":       runner.Value("-I" + opts.Dependency.Include),
		"OPENSSL_LIBS":         runner.Value(strings.Join(libs, " ")),
		"PKCS11_HELPER_CFLAGS": runner.Value(""),
		"PKCS11_HELPER_LIBS":   runner.Value(""),
	}
	if opts.Target == platform.Windows {
		env = env.With(crossEnv)
	}
	return env
}

// Copies dependency libraries matching the configured globs into the
// tree's library directory. Files that already are the destination are
// skipped.
func copySharedLibs(opts Options) error {
	for _, pattern := range opts.SharedLibs {
		matches, err := filepath.Glob(filepath.Join(opts.Dependency.Lib, pattern))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuild, err)
		}
		if len(matches) == 0 {
			slog.Warn("no shared library matched", "pattern", pattern, "dir", opts.Dependency.Lib)
		}

		for _, src := range matches {
			dst := filepath.Join(opts.Stage.Lib(), filepath.Base(src))
			if fsutil.SameFile(src, dst) {
				continue
			}
			if err := fsutil.CopyFile(src, dst, 0); err != nil {
				return fmt.Errorf("%w: %w", ErrBuild, err)
			}
			slog.Debug("copied shared library", "src", src, "dst", dst)
		}
	}
	return nil
}
