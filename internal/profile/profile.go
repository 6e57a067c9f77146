package profile

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/source"
	"gopkg.in/yaml.v3"
)

// Profile selected when none is given.
const Default = "pq-openvpn-2.4.4"

// Product build parameters.
type Profile struct {
	Name         string       `yaml:"name"`
	Description  string       `yaml:"description,omitempty"`
	Product      string       `yaml:"product"` // Product name used in artifact names.
	Version      string       `yaml:"version"` // Product version used in artifact names.
	Prefix       string       `yaml:"prefix"`  // Default install prefix.
	Repositories Repositories `yaml:"repositories"`
	OpenSSL      OpenSSL      `yaml:"openssl"`
	OpenVPN      OpenVPN      `yaml:"openvpn"`
	Installer    Installer    `yaml:"installer"`

	origin string
}

// Source repositories of a build.
type Repositories struct {
	OpenSSL source.Repository `yaml:"openssl"` // Cryptography library.
	OpenVPN source.Repository `yaml:"openvpn"` // Product sources.
	Build   source.Repository `yaml:"build"`   // Windows installer build scripts.
	GUI     source.Repository `yaml:"gui"`     // Windows GUI.
}

// OpenSSL stage parameters.
type OpenSSL struct {
	ConfigScript string   `yaml:"configScript,omitempty"` // Script printing the Configure target, relative to the resources directory.
	WindowsLibs  []string `yaml:"windowsLibs,omitempty"`  // DLLs copied out of each Windows build.
}

// OpenVPN stage parameters.
type OpenVPN struct {
	SpecialBuild string   `yaml:"specialBuild"`         // Value of --with-special-build.
	ExtraLibs    []string `yaml:"extraLibs,omitempty"`  // Appended to OPENSSL_LIBS.
	SharedLibs   []string `yaml:"sharedLibs,omitempty"` // Library globs copied from the dependency into the install tree.
}

// Windows installer parameters.
type Installer struct {
	Name     string            `yaml:"name"`               // Installer executable produced by the NSIS scripts.
	Tarballs map[string]string `yaml:"tarballs,omitempty"` // Source tarball name per repository key (openvpn, gui).
}

// Returns the repositories in acquisition order.
func (r Repositories) All() []source.Repository {
	return []source.Repository{r.OpenSSL, r.OpenVPN, r.Build, r.GUI}
}

// Returns the repository stored under key ("openssl", "openvpn", "build",
// "gui").
func (r Repositories) Get(key string) (source.Repository, bool) {
	switch key {
	case "openssl":
		return r.OpenSSL, true
	case "openvpn":
		return r.OpenVPN, true
	case "build":
		return r.Build, true
	case "gui":
		return r.GUI, true
	}
	return source.Repository{}, false
}

// Returns where the profile was loaded from: "embedded" or a file path.
func (p *Profile) Origin() string {
	return p.origin
}

// Returns the base name of artifacts for platform, as in
// "pq-openvpn-2.4.4-linux".
func (p *Profile) ArtifactName(platform string) string {
	return fmt.Sprintf("%s-%s-%s", p.Product, p.Version, platform)
}

// Validates the profile.
func (p *Profile) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidProfile)
	case p.Product == "":
		return fmt.Errorf("%w: %s: missing product", ErrInvalidProfile, p.Name)
	case p.Version == "":
		return fmt.Errorf("%w: %s: missing version", ErrInvalidProfile, p.Name)
	case !path.IsAbs(p.Prefix):
		return fmt.Errorf("%w: %s: prefix %q is not absolute", ErrInvalidProfile, p.Name, p.Prefix)
	case p.OpenVPN.SpecialBuild == "":
		return fmt.Errorf("%w: %s: missing openvpn.specialBuild", ErrInvalidProfile, p.Name)
	}

	for _, repo := range p.Repositories.All() {
		if err := repo.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.Name, err)
		}
	}

	for key, name := range p.Installer.Tarballs {
		if _, ok := p.Repositories.Get(key); !ok {
			return fmt.Errorf("%w: %s: installer tarball for unknown repository %q", ErrInvalidProfile, p.Name, key)
		}
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %s: invalid tarball name %q", ErrInvalidProfile, p.Name, name)
		}
	}
	return nil
}

// Decodes and validates a profile. Unknown keys are rejected.
func Parse(r io.Reader) (*Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
