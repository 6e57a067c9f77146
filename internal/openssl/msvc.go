package openssl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/runner"
)

// Default vswhere location, installed with every Visual Studio 2017+.
const vswhere = `C:\Program Files (x86)\Microsoft Visual Studio\Installer\vswhere.exe`

// vcvarsall.bat location below a Visual Studio installation.
var vcvarsallRel = filepath.Join("VC", "Auxiliary", "Build", "vcvarsall.bat")

// Windows build of one architecture.
type arch struct {
	name      string // Stage subdirectory and tree suffix.
	target    string // Configure target.
	script    string // Makefile generator.
	vcvarsArg string // vcvarsall.bat argument.
}

var archs = []arch{
	{name: "x86", target: "VC-WIN32", script: `ms\do_ms.bat`, vcvarsArg: "x86"},
	{name: "x64", target: "VC-WIN64A", script: `ms\do_win64a.bat`, vcvarsArg: "amd64"},
}

func (b *Builder) buildMSVC(ctx context.Context, tree string, opts Options) (Paths, error) {
	vcvarsall, err := b.findVCVarsAll(ctx, opts.VCVarsAll)
	if err != nil {
		return Paths{}, err
	}

	paths := Paths{DLLs: make(map[string]string, len(archs))}
	for _, a := range archs {
		dir, err := b.buildArch(ctx, tree, vcvarsall, a, opts)
		if err != nil {
			return Paths{}, err
		}
		paths.DLLs[a.name] = dir
	}
	return paths, nil
}

// Builds one architecture in a private copy of the tree and copies the
// DLLs to "<stage>/<arch>". Returns that directory.
func (b *Builder) buildArch(ctx context.Context, tree, vcvarsall string, a arch, opts Options) (string, error) {
	archTree := tree + "-win-" + a.name
	if err := fsutil.RemoveAll(archTree); err != nil {
		return "", err
	}
	if err := fsutil.CopyTree(tree, archTree); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuild, err)
	}

	slog.Info("building openssl dlls", "arch", a.name, "source", archTree)

	err := b.Runner.Dirs.Within(archTree, func() error {
		if err := b.run(ctx, runner.Command{Args: []string{"perl", "Configure", a.target, "no-asm", "enable-static-engine"}}); err != nil {
			return err
		}
		if err := b.run(ctx, runner.Command{Args: []string{"cmd", "/c", a.script}}); err != nil {
			return err
		}

		env, err := b.captureMSVCEnv(ctx, vcvarsall, a.vcvarsArg)
		if err != nil {
			return err
		}
		return b.run(ctx, runner.Command{Args: []string{"nmake", "-f", `ms\ntdll.mak`}, Env: env})
	})
	if err != nil {
		return "", err
	}

	dest := filepath.Join(opts.StageDir, a.name)
	for _, lib := range opts.WindowsLibs {
		if _, err := fsutil.CopyInto(filepath.Join(archTree, "out32dll", lib), dest); err != nil {
			return "", fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}
	return dest, nil
}

// Returns the environment vcvarsall.bat establishes for target.
func (b *Builder) captureMSVCEnv(ctx context.Context, vcvarsall, target string) (runner.Env, error) {
	out, err := b.Runner.Capture(ctx, runner.Command{
		Args: []string{"cmd", "/c", "call", vcvarsall, target, "&&", "set"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: running vcvarsall.bat %s: %w", ErrToolchainMissing, target, err)
	}

	env := runner.ParseEnviron(out)
	if len(env) == 0 {
		return nil, fmt.Errorf("%w: vcvarsall.bat %s produced no environment", ErrToolchainMissing, target)
	}
	return env, nil
}

// Returns the path of vcvarsall.bat: the configured one, or the one of the
// latest Visual Studio installation with the C++ tools, as reported by
// vswhere.
func (b *Builder) findVCVarsAll(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrToolchainMissing, configured, err)
		}
		return configured, nil
	}

	if _, err := os.Stat(vswhere); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: vswhere.exe not found; install Visual Studio with the C++ tools or pass --vcvarsall", ErrToolchainMissing)
	}

	out, err := b.Runner.Capture(ctx, runner.Command{Args: []string{
		vswhere, "-latest", "-products", "*",
		"-requires", "Microsoft.VisualStudio.Component.VC.Tools.x86.x64",
		"-property", "installationPath",
	}})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolchainMissing, err)
	}

	install := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	if install == "" {
		return "", fmt.Errorf("%w: no Visual Studio installation with the C++ tools; pass --vcvarsall", ErrToolchainMissing)
	}

	path := filepath.Join(install, vcvarsallRel)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolchainMissing, path, err)
	}
	slog.Debug("found vcvarsall.bat", "path", path)
	return path, nil
}
