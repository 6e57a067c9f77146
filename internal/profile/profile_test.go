package profile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmbeddedProfilesAreValid(t *testing.T) {
	for _, name := range []string{"pq-openvpn-2.4.4", "pq-openvpn-dev"} {
		p, err := loadEmbedded(name)
		if err != nil {
			t.Fatalf("loadEmbedded(%s): %v", name, err)
		}
		if p.Name != name {
			t.Errorf("profile %s declares name %q", name, p.Name)
		}
		if p.Origin() != "embedded" {
			t.Errorf("origin = %q", p.Origin())
		}
	}
}

func TestReleaseProfile(t *testing.T) {
	p, err := loadEmbedded(Default)
	if err != nil {
		t.Fatal(err)
	}

	if !p.Repositories.OpenSSL.Pinned() {
		t.Error("release OpenSSL is not pinned")
	}
	if p.Repositories.OpenSSL.Commit != "01f211920aea41640c647f462e9d7c4c106e3240" {
		t.Errorf("commit = %s", p.Repositories.OpenSSL.Commit)
	}
	if p.Prefix != "/usr/local/openvpn" {
		t.Errorf("prefix = %s", p.Prefix)
	}
	if got := p.ArtifactName("linux"); got != "pq-openvpn-2.4.4-linux" {
		t.Errorf("ArtifactName = %s", got)
	}
	if p.OpenSSL.ConfigScript != "" && !strings.Contains(p.Description, p.OpenSSL.ConfigScript) {
		t.Errorf("description does not say %s must be supplied: %q", p.OpenSSL.ConfigScript, p.Description)
	}

	var dirs []string
	for _, r := range p.Repositories.All() {
		dirs = append(dirs, r.LocalDir())
	}
	want := []string{"openssl-oqs", "openvpn-2.4.4", "openvpn-build", "openvpn-gui"}
	if diff := cmp.Diff(want, dirs); diff != "" {
		t.Errorf("repository order mismatch (-want +got):\n%s", diff)
	}
}

func TestDevProfile(t *testing.T) {
	p, err := loadEmbedded("pq-openvpn-dev")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range p.Repositories.All() {
		if r.Pinned() {
			t.Errorf("dev repository %s is pinned", r.Name)
		}
	}
	if diff := cmp.Diff([]string{"-loqs"}, p.OpenVPN.ExtraLibs); diff != "" {
		t.Errorf("extra libs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("name: x\nproduct: y\nversion: 1\nprefix: /opt\nflavour: z\n"))
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("err = %v, want ErrInvalidProfile", err)
	}
}

func TestValidate(t *testing.T) {
	base, err := loadEmbedded(Default)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"relative prefix", func(p *Profile) { p.Prefix = "usr/local" }},
		{"missing version", func(p *Profile) { p.Version = "" }},
		{"pinned repo without dir", func(p *Profile) { p.Repositories.OpenSSL.Dir = "" }},
		{"unknown tarball key", func(p *Profile) { p.Installer.Tarballs = map[string]string{"nsis": "x.tar.gz"} }},
		{"tarball with path", func(p *Profile) { p.Installer.Tarballs = map[string]string{"gui": "../x.tar.gz"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *base
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("err = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `name: custom
product: pq-openvpn
version: 2.4.5
prefix: /opt/openvpn
repositories:
  openssl: {name: openssl-oqs, url: https://example.com/openssl, dir: openssl-oqs}
  openvpn: {name: openvpn, url: https://example.com/openvpn, dir: openvpn}
  build: {name: openvpn-build, url: https://example.com/openvpn-build}
  gui: {name: openvpn-gui, url: https://example.com/openvpn-gui}
openvpn:
  specialBuild: pq-openvpn
installer:
  name: openvpn-install.exe
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != "2.4.5" || p.Origin() != path {
		t.Errorf("profile = %+v", p)
	}
	if p.Repositories.Build.LocalDir() != "openvpn-build" {
		t.Errorf("build dir = %s", p.Repositories.Build.LocalDir())
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("no-such-profile"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	userDir := t.TempDir()
	data, err := embedded.ReadFile("profiles/pq-openvpn-dev.yaml")
	if err != nil {
		t.Fatal(err)
	}
	shadow := strings.Replace(string(data), "description: Development", "description: Local development", 1)
	os.WriteFile(filepath.Join(userDir, "dev.yaml"), []byte(shadow), 0644)
	os.WriteFile(filepath.Join(userDir, "broken.yaml"), []byte("name: [\n"), 0644)

	got, err := List(userDir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, s := range got {
		names = append(names, s.Name)
		if s.Name == "pq-openvpn-dev" && !strings.HasPrefix(s.Description, "Local") {
			t.Errorf("user profile did not shadow embedded one: %+v", s)
		}
	}
	if diff := cmp.Diff([]string{"pq-openvpn-2.4.4", "pq-openvpn-dev"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
