package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/pqbuild/internal"
	"github.com/cruciblehq/pqbuild/internal/pipeline"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/profile"
)

func parse(t *testing.T, args ...string) *kong.Context {
	t.Helper()

	parser, err := kong.New(&RootCmd, kong.Vars(vars()), kong.Exit(func(int) { t.Fatal("kong exited") }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return ctx
}

func TestParseDefaultsToBuild(t *testing.T) {
	parse(t, "--skip-download", "--target", "windows")

	if !RootCmd.Build.SkipDownload {
		t.Error("--skip-download not bound to the build command")
	}
	if RootCmd.Build.Target != "windows" {
		t.Errorf("target = %q, want windows", RootCmd.Build.Target)
	}
	if RootCmd.Build.Profile != profile.Default {
		t.Errorf("profile = %q, want %q", RootCmd.Build.Profile, profile.Default)
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("PQBUILD_SKIP_TEST", "true")
	t.Setenv("PQBUILD_ARCHIVER", "tar")

	parse(t, "plan")

	if !RootCmd.Plan.SkipTest {
		t.Error("PQBUILD_SKIP_TEST ignored")
	}
	if RootCmd.Plan.Archiver != "tar" {
		t.Errorf("archiver = %q, want tar", RootCmd.Plan.Archiver)
	}
}

func TestBuildFlagsConfig(t *testing.T) {
	root := t.TempDir()
	f := BuildFlags{
		Target:       "Windows",
		Profile:      "pq-openvpn-dev",
		SourcesDir:   filepath.Join(root, "sources"),
		BuildDir:     filepath.Join(root, "build"),
		StageDir:     filepath.Join(root, "stage"),
		ImageDir:     filepath.Join(root, "images"),
		Archiver:     "builtin",
		SkipDownload: true,
		SkipTest:     true,
		DebugBuild:   true,
	}

	cfg, err := f.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Target != platform.Windows {
		t.Errorf("target = %q", cfg.Target)
	}
	if cfg.Profile.Name != "pq-openvpn-dev" {
		t.Errorf("profile = %q", cfg.Profile.Name)
	}
	if cfg.Prefix != cfg.Profile.Prefix {
		t.Errorf("prefix = %q, want the profile's", cfg.Prefix)
	}
	if want := (pipeline.Skip{Download: true, Test: true}); cfg.Skip != want {
		t.Errorf("skip = %+v, want %+v", cfg.Skip, want)
	}
	if !cfg.Debug {
		t.Error("debug build not set")
	}
}

func TestBuildFlagsConfigUnknownTarget(t *testing.T) {
	f := BuildFlags{Target: "plan9", Profile: profile.Default}
	if _, err := f.config(); !errors.Is(err, platform.ErrUnknownOS) {
		t.Fatalf("err = %v, want ErrUnknownOS", err)
	}
}

func TestBuildFlagsConfigUnknownProfile(t *testing.T) {
	f := BuildFlags{Target: "linux", Profile: "no-such-profile"}
	if _, err := f.config(); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVersionWrite(t *testing.T) {
	info := internal.BuildInfo{
		Version:  "(undefined)",
		Stage:    "(undefined)",
		Commit:   "a1b2c3d4e5f6",
		Modified: true,
		Arch:     "linux/amd64",
		Go:       "go1.25.1",
		Local:    true,
	}

	var full bytes.Buffer
	if err := (&VersionCmd{}).write(&full, info); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"pqbuild ",
		"  commit     a1b2c3d4e5f6 (modified)\n",
		"  built for  linux/amd64\n",
		"  profile    " + profile.Default + "\n",
	} {
		if !strings.Contains(full.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, full.String())
		}
	}

	var short bytes.Buffer
	if err := (&VersionCmd{Short: true}).write(&short, info); err != nil {
		t.Fatal(err)
	}
	if strings.Count(short.String(), "\n") != 1 {
		t.Errorf("short output = %q, want one line", short.String())
	}
}
