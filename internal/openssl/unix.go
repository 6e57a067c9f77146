package openssl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/runner"
)

// Interpreter line prepended to Configure when it is run directly.
const perlShebang = "#!/usr/bin/env perl\n#"

func (b *Builder) buildUnix(ctx context.Context, tree string, opts Options) (Paths, error) {
	err := b.Runner.Dirs.Within(tree, func() error {
		configure, err := b.configureArgs(ctx, opts)
		if err != nil {
			return err
		}

		steps := [][]string{configure, {"make"}}
		if opts.Test {
			steps = append(steps, []string{"make", "test"})
		}
		steps = append(steps, installArgs(tree, opts))

		for _, args := range steps {
			if err := b.run(ctx, runner.Command{Args: args}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Paths{}, err
	}

	paths := PathsFor(opts.StageDir, opts.Prefix)
	slog.Info("openssl installed", "lib", paths.Lib, "include", paths.Include)
	return paths, nil
}

// Returns the configure command line. With a platform script the target is
// computed by the script and Configure is run directly; otherwise OpenSSL's
// config script guesses the target.
func (b *Builder) configureArgs(ctx context.Context, opts Options) ([]string, error) {
	common := []string{
		"shared",
		"--prefix=" + opts.Prefix,
		"--openssldir=" + opts.Prefix + "/ssl",
	}
	if opts.Debug {
		common = append(common, "-d")
	}

	if opts.ConfigScript == "" {
		return append([]string{"./config"}, common...), nil
	}

	target, err := b.Runner.Capture(ctx, runner.Command{Args: []string{"/bin/sh", opts.ConfigScript}})
	if err != nil {
		return nil, fmt.Errorf("%w: determining configure target: %w", ErrBuild, err)
	}
	if target == "" {
		return nil, fmt.Errorf("%w: %s printed no configure target", ErrBuild, opts.ConfigScript)
	}
	slog.Debug("configure target", "target", target, "script", opts.ConfigScript)

	if err := rewriteShebang(b.Runner.Dirs.Resolve("Configure")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	args := append([]string{"./Configure"}, common...)
	return append(args, target), nil
}

// Returns the install command line. INSTALL_PREFIX relocates 1.0.x
// installs; 1.1 and later trees use DESTDIR instead.
func installArgs(tree string, opts Options) []string {
	args := []string{
		"make", "install",
		"INSTALL_PREFIX=" + opts.StageDir,
		"INSTALL_TOP=/",
	}
	if fsutil.IsDir(filepath.Join(tree, "Configurations")) {
		args = append(args, "DESTDIR="+opts.StageDir)
	}
	return args
}

// Makes Configure runnable regardless of where perl is installed by
// prepending an env-based interpreter line and commenting out the original
// first line. Already rewritten files are left alone.
func rewriteShebang(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(data, []byte(perlShebang)) {
		return nil
	}

	data = append([]byte(perlShebang), data...)
	if err := os.WriteFile(path, data, info.Mode().Perm()); err != nil {
		return err
	}
	slog.Debug("rewrote interpreter line", "file", filepath.Base(path))
	return nil
}
