package cli

import (
	"github.com/cruciblehq/pqbuild/internal"
	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/paths"
	"github.com/cruciblehq/pqbuild/internal/pipeline"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/profile"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/workdir"
)

// Flags that select what to build and where.
type BuildFlags struct {
	Target       string `help:"Target operating system (${targets})." default:"${host}" env:"PQBUILD_TARGET"`
	Profile      string `help:"Product profile name or YAML file. Names are searched in ${profiles} before the built-in profiles." default:"${profile}" env:"PQBUILD_PROFILE"`
	Prefix       string `help:"Install prefix. Defaults to the profile's." env:"PQBUILD_PREFIX" placeholder:"PATH"`
	SourcesDir   string `help:"Directory for cloned sources and their cache archives." default:"${sources}" env:"PQBUILD_SOURCES_DIR" type:"path"`
	BuildDir     string `help:"Directory the sources are built in." default:"${build}" env:"PQBUILD_BUILD_DIR" type:"path"`
	StageDir     string `help:"Directory the build is installed into." default:"${stage}" env:"PQBUILD_STAGE_DIR" type:"path"`
	ImageDir     string `help:"Directory for produced bundles." default:"${images}" env:"PQBUILD_IMAGE_DIR" type:"path"`
	ResourcesDir string `help:"Directory overriding the bundled resources and holding the OpenSSL platform script." env:"PQBUILD_RESOURCES_DIR" type:"path"`
	Archiver     string `help:"Archiver for caches and bundles (${archivers})." default:"builtin" env:"PQBUILD_ARCHIVER"`
	NoClean      bool   `help:"Keep the contents of the build directory." env:"PQBUILD_NO_CLEAN"`
	SkipDownload bool   `help:"Use the cache archives in the sources directory instead of cloning." env:"PQBUILD_SKIP_DOWNLOAD"`
	SkipOpenSSL  bool   `name:"skip-openssl" help:"Use the OpenSSL already installed in the stage." env:"PQBUILD_SKIP_OPENSSL"`
	SkipOpenVPN  bool   `name:"skip-openvpn" help:"Use the OpenVPN already installed in the stage." env:"PQBUILD_SKIP_OPENVPN"`
	SkipImages   bool   `help:"Do not package the stage." env:"PQBUILD_SKIP_IMAGES"`
	SkipTest     bool   `help:"Do not run the OpenSSL test suite." env:"PQBUILD_SKIP_TEST"`
	DebugBuild   bool   `help:"Configure a debug OpenSSL." env:"PQBUILD_DEBUG_BUILD"`
	ConfigScript string `help:"Script printing the OpenSSL Configure target. Overrides the profile's." env:"PQBUILD_CONFIG_SCRIPT" type:"path"`
	VCVarsAll    string `name:"vcvarsall" help:"Path to vcvarsall.bat. Searched with vswhere by default." env:"PQBUILD_VCVARSALL" placeholder:"PATH"`
}

// Returns the validated pipeline configuration for the flags.
func (f *BuildFlags) config() (*pipeline.Config, error) {
	target, err := platform.Parse(f.Target)
	if err != nil {
		return nil, err
	}

	p, err := profile.Load(f.Profile)
	if err != nil {
		return nil, err
	}

	cfg := &pipeline.Config{
		Target:       target,
		SourcesDir:   f.SourcesDir,
		BuildDir:     f.BuildDir,
		StageDir:     f.StageDir,
		ImageDir:     f.ImageDir,
		ResourcesDir: f.ResourcesDir,
		Prefix:       f.Prefix,
		NoClean:      f.NoClean,
		Debug:        f.DebugBuild,
		Archiver:     archive.Kind(f.Archiver),
		ConfigScript: f.ConfigScript,
		VCVarsAll:    f.VCVarsAll,
		Profile:      p,
		Skip: pipeline.Skip{
			Download: f.SkipDownload,
			OpenSSL:  f.SkipOpenSSL,
			OpenVPN:  f.SkipOpenVPN,
			Images:   f.SkipImages,
			Test:     f.SkipTest,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Returns the pipeline dependencies for a run on the host.
func deps() (pipeline.Deps, error) {
	dirs, err := workdir.New(paths.Cwd())
	if err != nil {
		return pipeline.Deps{}, err
	}
	return pipeline.Deps{Runner: runner.New(dirs, internal.CurrentModes().Verbose)}, nil
}
