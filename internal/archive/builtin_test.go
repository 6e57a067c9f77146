package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

func writeStage(t *testing.T) string {
	t.Helper()

	stage := t.TempDir()
	sbin := filepath.Join(stage, "usr", "local", "openvpn", "sbin")
	if err := os.MkdirAll(sbin, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sbin, "openvpn"), []byte("ELF"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sbin, "initialsetup.sh"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return stage
}

func readHeaders(t *testing.T, path string) []*tar.Header {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)

	var headers []*tar.Header
	for {
		h, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return headers
		}
		if err != nil {
			t.Fatal(err)
		}
		headers = append(headers, h)
	}
}

func TestBuiltinCreateContents(t *testing.T) {
	stage := writeStage(t)
	dst := filepath.Join(t.TempDir(), "images", "pq-openvpn-2.4.4-linux.tar.gz")

	err := Builtin{}.Create(context.Background(), dst, Source{Base: stage, Name: ".", Owner: "root"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var names []string
	for _, h := range readHeaders(t, dst) {
		names = append(names, h.Name)
		if h.Uid != 0 || h.Gid != 0 || h.Uname != "root" || h.Gname != "root" {
			t.Errorf("%s: owner = %d:%d %s:%s, want root", h.Name, h.Uid, h.Gid, h.Uname, h.Gname)
		}
	}

	want := []string{
		"./usr/",
		"./usr/local/",
		"./usr/local/openvpn/",
		"./usr/local/openvpn/sbin/",
		"./usr/local/openvpn/sbin/initialsetup.sh",
		"./usr/local/openvpn/sbin/openvpn",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinCreateNamedDirectory(t *testing.T) {
	sources := t.TempDir()
	repo := filepath.Join(sources, "openvpn-2.4.4")
	if err := os.MkdirAll(filepath.Join(repo, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(repo, "configure.ac"), []byte("AC_INIT"), 0644)

	dst := filepath.Join(sources, "openvpn-2.4.4.tar.gz")
	if err := (Builtin{}).Create(context.Background(), dst, Source{Base: sources, Name: "openvpn-2.4.4"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	var names []string
	for _, h := range readHeaders(t, dst) {
		names = append(names, h.Name)
	}
	want := []string{"openvpn-2.4.4/", "openvpn-2.4.4/configure.ac", "openvpn-2.4.4/src/"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}

	leftovers, _ := filepath.Glob(filepath.Join(sources, ".openvpn-2.4.4.tar.gz.*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestBuiltinCreateMissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.tar.gz")
	err := Builtin{}.Create(context.Background(), dst, Source{Base: t.TempDir(), Name: "missing"})
	if !errors.Is(err, ErrCreate) {
		t.Fatalf("err = %v, want ErrCreate", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive exists after failure")
	}
}

func TestBuiltinExtract(t *testing.T) {
	sources := t.TempDir()
	repo := filepath.Join(sources, "openssl-oqs")
	os.MkdirAll(repo, 0755)
	os.WriteFile(filepath.Join(repo, "Configure"), []byte("#!/usr/local/bin/perl\n"), 0755)
	if runtime.GOOS != "windows" {
		if err := os.Symlink("Configure", filepath.Join(repo, "config")); err != nil {
			t.Fatal(err)
		}
	}

	archivePath := filepath.Join(sources, "openssl-oqs.tar.gz")
	ctx := context.Background()
	if err := (Builtin{}).Create(ctx, archivePath, Source{Base: sources, Name: "openssl-oqs"}); err != nil {
		t.Fatal(err)
	}

	build := t.TempDir()
	if err := (Builtin{}).Extract(ctx, archivePath, build); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(build, "openssl-oqs", "Configure"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/usr/local/bin/perl\n" {
		t.Errorf("Configure = %q", data)
	}
	if runtime.GOOS != "windows" {
		info, _ := os.Stat(filepath.Join(build, "openssl-oqs", "Configure"))
		if info.Mode().Perm()&0100 == 0 {
			t.Errorf("Configure lost its executable bit: %v", info.Mode())
		}
		link, err := os.Readlink(filepath.Join(build, "openssl-oqs", "config"))
		if err != nil || link != "Configure" {
			t.Errorf("config symlink = %q, %v", link, err)
		}
	}
}

func TestBuiltinExtractReplacesReadOnlyFiles(t *testing.T) {
	sources := t.TempDir()
	pack := filepath.Join(sources, "openvpn", ".git", "objects", "pack")
	if err := os.MkdirAll(filepath.Dir(pack), 0755); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	build := t.TempDir()
	for _, content := range []string{"first", "second"} {
		os.Remove(pack)
		if err := os.WriteFile(pack, []byte(content), 0444); err != nil {
			t.Fatal(err)
		}

		archivePath := filepath.Join(sources, "openvpn.tar.gz")
		if err := (Builtin{}).Create(ctx, archivePath, Source{Base: sources, Name: "openvpn"}); err != nil {
			t.Fatal(err)
		}
		if err := (Builtin{}).Extract(ctx, archivePath, build); err != nil {
			t.Fatalf("Extract (%s): %v", content, err)
		}
	}

	restored := filepath.Join(build, "openvpn", ".git", "objects", "pack")
	data, err := os.ReadFile(restored)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want the second archive's", data)
	}
	if runtime.GOOS != "windows" {
		info, _ := os.Stat(restored)
		if info.Mode().Perm() != 0444 {
			t.Errorf("mode = %v, want 0444", info.Mode().Perm())
		}
	}
}

func TestBuiltinExtractRejectsEscapingMembers(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	tw.WriteHeader(&tar.Header{Name: "../escaped", Mode: 0644, Size: 1, Typeflag: tar.TypeReg})
	tw.Write([]byte("x"))
	tw.Close()
	gz.Close()
	f.Close()

	dest := filepath.Join(t.TempDir(), "dest")
	os.Mkdir(dest, 0755)

	err = Builtin{}.Extract(context.Background(), archivePath, dest)
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("err = %v, want ErrUnsafePath", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "escaped")); err == nil {
		t.Error("member written outside destination")
	}
}

func TestMemberName(t *testing.T) {
	tests := []struct {
		name, rel, want string
	}{
		{".", ".", ""},
		{".", "etc", "./etc"},
		{".", filepath.Join("etc", "systemd"), "./etc/systemd"},
		{"openvpn-gui", ".", "openvpn-gui"},
		{"openvpn-gui", "res", "openvpn-gui/res"},
	}

	for _, tt := range tests {
		if got := memberName(tt.name, tt.rel); got != tt.want {
			t.Errorf("memberName(%q, %q) = %q, want %q", tt.name, tt.rel, got, tt.want)
		}
	}
}

func TestDigestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	os.WriteFile(path, []byte("hello"), 0644)

	d, size, err := DigestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	want := "sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if d.String() != want {
		t.Errorf("digest = %s, want %s", d, want)
	}
}
