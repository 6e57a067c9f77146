package openssl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/source"
)

// Installed library locations.
type Paths struct {
	Lib     string            // Library directory. Empty for Windows builds.
	Include string            // Header directory. Empty for Windows builds.
	DLLs    map[string]string // Directory holding the DLLs, per Windows architecture.
}

// Returns the library and header directories of an installation below
// stage with the given prefix.
func PathsFor(stage, prefix string) Paths {
	root := filepath.Join(stage, strings.TrimPrefix(filepath.FromSlash(prefix), string(filepath.Separator)))
	return Paths{
		Lib:     filepath.Join(root, "lib"),
		Include: filepath.Join(root, "include"),
	}
}

// Tools each flavor runs from PATH. nmake is only reachable after the
// Visual Studio environment is captured and is not listed.
var requiredTools = map[platform.Flavor][]string{
	platform.FlavorUnix: {"perl", "make"},
	platform.FlavorMSVC: {"perl", "cmd"},
}

// Build parameters.
type Options struct {
	Source       string          // Source directory name, as in the cache.
	BuildDir     string          // Directory the source is restored into.
	StageDir     string          // Staging root.
	Prefix       string          // Install prefix.
	Flavor       platform.Flavor // Toolchain.
	Test         bool            // Run "make test".
	Debug        bool            // Configure a debug build.
	ConfigScript string          // Script printing the Configure target. Empty uses ./config.
	VCVarsAll    string          // Path to vcvarsall.bat. Empty searches with vswhere.
	WindowsLibs  []string        // DLLs copied from each Windows build.
}

// Builds OpenSSL.
type Builder struct {
	Runner   *runner.Runner
	Acquirer *source.Acquirer
}

// Checks that the flavor's tools are in PATH, restores the sources, and
// builds them with the configured flavor.
func (b *Builder) Build(ctx context.Context, opts Options) (Paths, error) {
	if err := b.Runner.Require("the openssl build", requiredTools[opts.Flavor]...); err != nil {
		return Paths{}, err
	}

	if err := b.Acquirer.Restore(ctx, opts.Source, opts.BuildDir); err != nil {
		return Paths{}, err
	}

	tree := filepath.Join(opts.BuildDir, opts.Source)
	if !fsutil.IsDir(tree) {
		return Paths{}, fmt.Errorf("%w: %s; run without --skip-download or provide %s.tar.gz in the sources directory", ErrMissingSource, tree, opts.Source)
	}

	slog.Info("building openssl", "flavor", opts.Flavor, "source", tree, "test", opts.Test)

	switch opts.Flavor {
	case platform.FlavorUnix:
		return b.buildUnix(ctx, tree, opts)
	case platform.FlavorMSVC:
		return b.buildMSVC(ctx, tree, opts)
	}
	return Paths{}, fmt.Errorf("%w: %q", ErrUnsupported, opts.Flavor)
}

func (b *Builder) run(ctx context.Context, cmd runner.Command) error {
	if err := b.Runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}
	return nil
}
