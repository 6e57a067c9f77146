package openvpn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cruciblehq/pqbuild/internal/openssl"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/cruciblehq/pqbuild/internal/runner/runnertest"
	"github.com/cruciblehq/pqbuild/internal/source/sourcetest"
	"github.com/google/go-cmp/cmp"
)

type fixture struct {
	builder *Builder
	fake    *runnertest.Fake
	opts    Options
	tree    string
}

func newFixture(t *testing.T, withDependency bool) *fixture {
	t.Helper()

	r, fake := runnertest.New(t, t.TempDir())
	acq := sourcetest.New(t, r)
	sourcetest.Seed(t, acq, "openvpn-2.4.4", map[string]string{"configure.ac": "AC_INIT([OpenVPN])"})

	stage := Tree{Root: t.TempDir(), Prefix: "/usr/local/openvpn"}
	dep := openssl.PathsFor(stage.Root, stage.Prefix)
	if withDependency {
		for _, dir := range []string{dep.Lib, dep.Include} {
			if err := os.MkdirAll(dir, 0755); err != nil {
				t.Fatal(err)
			}
		}
	}

	build := t.TempDir()
	return &fixture{
		builder: &Builder{Runner: r, Acquirer: acq},
		fake:    fake,
		tree:    filepath.Join(build, "openvpn-2.4.4"),
		opts: Options{
			Source:       "openvpn-2.4.4",
			BuildDir:     build,
			Stage:        stage,
			Dependency:   dep,
			Target:       platform.Linux,
			SpecialBuild: "pq-openvpn",
		},
	}
}

func TestBuildLinux(t *testing.T) {
	f := newFixture(t, true)

	tree, err := f.builder.Build(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree != f.opts.Stage {
		t.Errorf("tree = %+v", tree)
	}

	want := []string{
		"autoreconf -i -f -v",
		"./configure --prefix=/usr/local/openvpn --disable-plugins --with-special-build=pq-openvpn",
		"make",
		"make install DESTDIR=" + f.opts.Stage.Root,
	}
	if diff := cmp.Diff(want, f.fake.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	calls := f.fake.Calls()
	for _, c := range calls {
		if c.Dir != f.tree {
			t.Errorf("%s ran in %s, want %s", c, c.Dir, f.tree)
		}
	}

	for _, c := range calls[1:3] {
		libs, _ := c.Getenv("OPENSSL_LIBS")
		wantLibs := "-L" + f.opts.Dependency.Lib + " -Wl,-rpath=/usr/local/openvpn/lib -lssl -lcrypto"
		if libs != wantLibs {
			t.Errorf("%s: OPENSSL_LIBS = %q, want %q", c, libs, wantLibs)
		}
		if cflags, _ := c.Getenv("OPENSSL_CFLAGS"); cflags != "-I"+f.opts.Dependency.Include {
			t.Errorf("%s: OPENSSL_CFLAGS = %q", c, cflags)
		}
		if v, ok := c.Getenv("PKCS11_HELPER_LIBS"); !ok || v != "" {
			t.Errorf("%s: PKCS11_HELPER_LIBS = %q, %v, want set and empty", c, v, ok)
		}
		if _, ok := c.Getenv("CHOST"); ok {
			t.Errorf("%s: CHOST set for a linux build", c)
		}
	}
}

func TestBuildWindowsCross(t *testing.T) {
	f := newFixture(t, true)
	f.opts.Target = platform.Windows
	os.MkdirAll(f.opts.Stage.DLLs("x86"), 0755)

	if _, err := f.builder.Build(context.Background(), f.opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	call, _ := f.fake.Find("./configure")
	if v, _ := call.Getenv("CHOST"); v != "i686-w64-mingw32" {
		t.Errorf("CHOST = %q", v)
	}
	if v, _ := call.Getenv("CBUILD"); v != "i686-pc-linux-gnu" {
		t.Errorf("CBUILD = %q", v)
	}
	if libs, _ := call.Getenv("OPENSSL_LIBS"); libs != "-L"+f.opts.Dependency.Lib+" -lssl -lcrypto" {
		t.Errorf("OPENSSL_LIBS = %q, want no rpath", libs)
	}
}

func TestBuildWindowsRequiresDLLs(t *testing.T) {
	f := newFixture(t, true)
	f.opts.Target = platform.Windows

	_, err := f.builder.Build(context.Background(), f.opts)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("err = %v, want ErrMissingDependency", err)
	}
	if len(f.fake.Calls()) != 0 {
		t.Errorf("ran %v", f.fake.Commands())
	}
}

func TestBuildMissingDependency(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.builder.Build(context.Background(), f.opts)
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("err = %v, want ErrMissingDependency", err)
	}
	if want := f.opts.Dependency.Lib; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not name %s", err, want)
	}
	if len(f.fake.Calls()) != 0 {
		t.Errorf("ran %v", f.fake.Commands())
	}
}

func TestBuildToolMissing(t *testing.T) {
	f := newFixture(t, true)
	f.fake.Missing("autoreconf")

	_, err := f.builder.Build(context.Background(), f.opts)
	if !errors.Is(err, runner.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
	if _, err := os.Stat(f.tree); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("tree restored before the tool check")
	}
	if len(f.fake.Calls()) != 0 {
		t.Errorf("ran %v", f.fake.Commands())
	}
}

func TestBuildExtraLibsAndSharedLibs(t *testing.T) {
	f := newFixture(t, true)
	f.opts.ExtraLibs = []string{"-loqs"}
	f.opts.SharedLibs = []string{"libcrypto.so.*", "libssl.so.*"}

	// Dependency installed elsewhere, as in development builds.
	f.opts.Dependency = openssl.PathsFor(t.TempDir(), "/usr/local/openvpn")
	os.MkdirAll(f.opts.Dependency.Lib, 0755)
	os.MkdirAll(f.opts.Dependency.Include, 0755)
	os.WriteFile(filepath.Join(f.opts.Dependency.Lib, "libssl.so.1.0.0"), []byte("ssl"), 0755)
	os.WriteFile(filepath.Join(f.opts.Dependency.Lib, "libcrypto.so.1.0.0"), []byte("crypto"), 0755)

	if _, err := f.builder.Build(context.Background(), f.opts); err != nil {
		t.Fatalf("Build: %v", err)
	}

	call, _ := f.fake.Find("make")
	libs, _ := call.Getenv("OPENSSL_LIBS")
	if want := "-L" + f.opts.Dependency.Lib + " -Wl,-rpath=/usr/local/openvpn/lib -lssl -lcrypto -loqs"; libs != want {
		t.Errorf("OPENSSL_LIBS = %q, want %q", libs, want)
	}

	for _, lib := range []string{"libssl.so.1.0.0", "libcrypto.so.1.0.0"} {
		if _, err := os.Stat(filepath.Join(f.opts.Stage.Lib(), lib)); err != nil {
			t.Errorf("%s not copied: %v", lib, err)
		}
	}
}

func TestCopySharedLibsSkipsSameFile(t *testing.T) {
	stage := Tree{Root: t.TempDir(), Prefix: "/usr/local/openvpn"}
	os.MkdirAll(stage.Lib(), 0755)
	os.WriteFile(filepath.Join(stage.Lib(), "libssl.so.1.0.0"), []byte("ssl"), 0755)

	opts := Options{
		Stage:      stage,
		Dependency: openssl.PathsFor(stage.Root, stage.Prefix),
		SharedLibs: []string{"libssl.so.*"},
	}
	if err := copySharedLibs(opts); err != nil {
		t.Fatalf("copySharedLibs: %v", err)
	}
}

func TestBuildFailure(t *testing.T) {
	f := newFixture(t, true)
	f.fake.On("./configure").Exit(1)

	_, err := f.builder.Build(context.Background(), f.opts)
	if !errors.Is(err, ErrBuild) || !errors.Is(err, runner.ErrCommandFailed) {
		t.Fatalf("err = %v", err)
	}
	if f.fake.Ran("make") {
		t.Error("make ran after configure failed")
	}
}

func TestTreeLayout(t *testing.T) {
	tree := Tree{Root: "/work/stage", Prefix: "/usr/local/openvpn"}

	got := []string{tree.PrefixDir(), tree.Sbin(), tree.Etc(), tree.Log(), tree.Doc(), tree.SystemdUnits(), tree.DLLs("x64")}
	want := []string{
		"/work/stage/usr/local/openvpn",
		"/work/stage/usr/local/openvpn/sbin",
		"/work/stage/usr/local/openvpn/etc",
		"/work/stage/usr/local/openvpn/log",
		"/work/stage/usr/local/openvpn/share/doc/openvpn",
		"/work/stage/etc/systemd/system",
		"/work/stage/x64",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}
