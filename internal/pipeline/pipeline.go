package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/fsutil"
	"github.com/cruciblehq/pqbuild/internal/openssl"
	"github.com/cruciblehq/pqbuild/internal/openvpn"
	"github.com/cruciblehq/pqbuild/internal/pack"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/resources"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/source"
)

// External collaborators of a run.
type Deps struct {
	Runner *runner.Runner // Executes external tools relative to its directory stack.
}

// State of a single run.
type run struct {
	cfg        *Config
	plan       *Plan
	report     *Report
	runner     *runner.Runner
	archiver   archive.Archiver
	acquirer   *source.Acquirer
	dependency openssl.Paths
	stage      openvpn.Tree
}

// Executes the pipeline for cfg.
//
// The configuration is validated and the plan decided before anything on
// disk changes. States then run in order; the first failure aborts the run
// and is returned wrapped in [ErrBuild] with the failing state. The report
// is returned on success only.
func Run(ctx context.Context, cfg *Config, deps Deps) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan, err := NewPlan(cfg)
	if err != nil {
		return nil, err
	}

	r, err := newRun(cfg, plan, deps)
	if err != nil {
		return nil, err
	}

	slog.Info("starting build",
		"run", r.report.RunID,
		"profile", cfg.Profile.Name,
		"target", cfg.Target,
		"host", cfg.Host,
		"prefix", cfg.Prefix,
	)
	for _, line := range plan.Summary(cfg) {
		slog.Info(line)
	}
	if plan.Strategy.Advisory != "" {
		slog.Warn(plan.Strategy.Advisory)
	}

	for _, step := range plan.Steps {
		if !step.Run {
			slog.Debug("skipping state", "state", step.State, "reason", step.Reason)
			continue
		}

		slog.Debug("entering state", "state", step.State)
		if err := r.execute(ctx, step.State); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBuild, step.State, err)
		}
	}

	return r.report, nil
}

func newRun(cfg *Config, plan *Plan, deps Deps) (*run, error) {
	archiver, err := archive.New(cfg.Archiver, deps.Runner)
	if err != nil {
		return nil, err
	}

	return &run{
		cfg:      cfg,
		plan:     plan,
		runner:   deps.Runner,
		archiver: archiver,
		acquirer: &source.Acquirer{
			Runner:     deps.Runner,
			SourcesDir: cfg.SourcesDir,
			Archiver:   archiver,
		},
		dependency: openssl.PathsFor(cfg.StageDir, cfg.Prefix),
		stage:      openvpn.Tree{Root: cfg.StageDir, Prefix: cfg.Prefix},
		report: &Report{
			RunID:   uuid.NewString(),
			Target:  cfg.Target,
			Host:    cfg.Host,
			Started: time.Now(),
			Steps:   plan.Steps,
		},
	}, nil
}

func (r *run) execute(ctx context.Context, state State) error {
	switch state {
	case StateClean:
		return r.clean()
	case StateAcquire:
		return r.acquire(ctx)
	case StateBuildDependency:
		return r.buildDependency(ctx)
	case StateBuildProduct:
		return r.buildProduct(ctx)
	case StatePackage:
		return r.pack(ctx)
	case StateReport:
		return r.finish()
	}
	return fmt.Errorf("unknown state %q", state)
}

// Empties the build directory and creates the working directories. The
// sources, stage, and image directories are left alone.
func (r *run) clean() error {
	slog.Info("cleaning build directory", "dir", r.cfg.BuildDir)
	if err := fsutil.RemoveAll(r.cfg.BuildDir); err != nil {
		return err
	}
	return r.prepare()
}

func (r *run) prepare() error {
	if err := fsutil.MkdirAll(r.cfg.SourcesDir, r.cfg.BuildDir, r.cfg.StageDir, r.cfg.ImageDir); err != nil {
		return fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	return nil
}

func (r *run) acquire(ctx context.Context) error {
	if err := r.prepare(); err != nil {
		return err
	}
	entries, err := r.acquirer.Download(ctx, r.cfg.Profile.Repositories.All())
	if err != nil {
		return err
	}
	for _, e := range entries {
		slog.Debug("cached source", "archive", e.Archive, "digest", e.Digest, "size", e.Size)
	}
	return nil
}

func (r *run) buildDependency(ctx context.Context) error {
	if err := r.prepare(); err != nil {
		return err
	}

	builder := &openssl.Builder{Runner: r.runner, Acquirer: r.acquirer}
	paths, err := builder.Build(ctx, openssl.Options{
		Source:       r.cfg.Profile.Repositories.OpenSSL.LocalDir(),
		BuildDir:     r.cfg.BuildDir,
		StageDir:     r.cfg.StageDir,
		Prefix:       r.cfg.Prefix,
		Flavor:       r.plan.Strategy.OpenSSLFlavor,
		Test:         !r.cfg.Skip.Test,
		Debug:        r.cfg.Debug,
		ConfigScript: r.configScript(),
		VCVarsAll:    r.cfg.VCVarsAll,
		WindowsLibs:  r.cfg.Profile.OpenSSL.WindowsLibs,
	})
	if err != nil {
		return err
	}

	r.dependency = paths
	return nil
}

// Returns the OpenSSL platform script to use, or "" for ./config. A
// script named by the profile but missing from the resources directory
// falls back to ./config.
func (r *run) configScript() string {
	if r.cfg.ConfigScript != "" {
		return r.cfg.ConfigScript
	}

	name := r.cfg.Profile.OpenSSL.ConfigScript
	if name == "" {
		return ""
	}

	path, err := r.resources().Path(name)
	if err != nil {
		slog.Warn("openssl platform script not found, using ./config", "script", name, "error", err)
		return ""
	}
	return path
}

func (r *run) buildProduct(ctx context.Context) error {
	if err := r.prepare(); err != nil {
		return err
	}

	builder := &openvpn.Builder{Runner: r.runner, Acquirer: r.acquirer}
	tree, err := builder.Build(ctx, openvpn.Options{
		Source:       r.cfg.Profile.Repositories.OpenVPN.LocalDir(),
		BuildDir:     r.cfg.BuildDir,
		Stage:        r.stage,
		Dependency:   r.dependency,
		Target:       r.cfg.Target,
		SpecialBuild: r.cfg.Profile.OpenVPN.SpecialBuild,
		ExtraLibs:    r.cfg.Profile.OpenVPN.ExtraLibs,
		SharedLibs:   r.cfg.Profile.OpenVPN.SharedLibs,
	})
	if err != nil {
		return err
	}

	r.stage = tree
	return nil
}

func (r *run) pack(ctx context.Context) error {
	if err := r.prepare(); err != nil {
		return err
	}

	packager := &pack.Packager{
		Runner:    r.runner,
		Acquirer:  r.acquirer,
		Archiver:  r.archiver,
		Resources: r.resources(),
	}

	var (
		bundle pack.Bundle
		err    error
	)
	if r.cfg.Target == platform.Windows {
		bundle, err = packager.Windows(ctx, r.windowsOptions())
	} else {
		bundle, err = packager.Unix(ctx, pack.UnixOptions{
			Stage:    r.stage,
			Target:   r.cfg.Target,
			ImageDir: r.cfg.ImageDir,
			Name:     r.cfg.Profile.ArtifactName(string(r.cfg.Target)),
		})
	}
	if err != nil {
		return err
	}

	slog.Info("bundle created", "path", bundle.Path, "size", bundle.HumanSize(), "digest", bundle.Digest)
	r.report.Bundles = append(r.report.Bundles, bundle)
	return nil
}

func (r *run) windowsOptions() pack.WindowsOptions {
	p := r.cfg.Profile

	var tarballs []pack.Tarball
	for _, key := range slices.Sorted(maps.Keys(p.Installer.Tarballs)) {
		repo, _ := p.Repositories.Get(key)
		tarballs = append(tarballs, pack.Tarball{Dir: repo.LocalDir(), Name: p.Installer.Tarballs[key]})
	}

	return pack.WindowsOptions{
		BuildDir:  r.cfg.BuildDir,
		ImageDir:  r.cfg.ImageDir,
		BuildTree: p.Repositories.Build.LocalDir(),
		GUITree:   p.Repositories.GUI.LocalDir(),
		Tarballs:  tarballs,
		Installer: p.Installer.Name,
	}
}

func (r *run) resources() resources.Set {
	return resources.Set{
		Dir: r.cfg.ResourcesDir,
		Data: resources.Data{
			Product: r.cfg.Profile.Product,
			Version: r.cfg.Profile.Version,
			Prefix:  r.cfg.Prefix,
		},
	}
}

func (r *run) finish() error {
	r.report.Duration = time.Since(r.report.Started)
	r.report.Advisory = r.plan.Strategy.Advisory
	r.report.Instructions = Instructions(r.cfg, r.report.Bundles)
	return nil
}

// Removes the build directory. Sources, stage, and images are kept.
func Clean(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	slog.Info("cleaning build directory", "dir", cfg.BuildDir)
	return fsutil.RemoveAll(cfg.BuildDir)
}

// Clones or updates every repository of the profile and refreshes their
// cache archives, without building.
func Download(ctx context.Context, cfg *Config, deps Deps) ([]source.CacheEntry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	archiver, err := archive.New(cfg.Archiver, deps.Runner)
	if err != nil {
		return nil, err
	}

	a := &source.Acquirer{Runner: deps.Runner, SourcesDir: cfg.SourcesDir, Archiver: archiver}
	if err := fsutil.MkdirAll(cfg.SourcesDir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrepare, err)
	}
	return a.Download(ctx, cfg.Profile.Repositories.All())
}
