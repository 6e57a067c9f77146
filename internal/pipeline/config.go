package pipeline

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/profile"
)

// Stages the user asked to skip.
type Skip struct {
	Download bool // Use existing cache archives.
	OpenSSL  bool // OpenSSL is already installed in the stage.
	OpenVPN  bool // OpenVPN is already installed in the stage.
	Images   bool // Leave the stage unpacked.
	Test     bool // Do not run "make test" on OpenSSL.
}

// Build configuration. Constructed once from flags and read-only after
// [Config.Validate].
type Config struct {
	Target       platform.OS      // Operating system to build for.
	Host         platform.OS      // Operating system building. Empty detects the host.
	SourcesDir   string           // Clones and cache archives.
	BuildDir     string           // Restored source trees.
	StageDir     string           // Staged install tree.
	ImageDir     string           // Produced bundles.
	ResourcesDir string           // Overrides for bundled resources and the OpenSSL platform script.
	Prefix       string           // Install prefix. Empty uses the profile's.
	Skip         Skip             // Requested skips.
	NoClean      bool             // Keep the build directory from earlier runs.
	Debug        bool             // Configure a debug OpenSSL.
	Archiver     archive.Kind     // Archiver for caches and bundles.
	ConfigScript string           // OpenSSL platform script. Empty uses the profile's.
	VCVarsAll    string           // Path to vcvarsall.bat on Windows hosts.
	Profile      *profile.Profile // Product profile.
}

// Fills defaults, makes directories absolute, and checks the
// configuration. Must be called before the configuration is used.
func (c *Config) Validate() error {
	if c.Profile == nil {
		return fmt.Errorf("%w: no profile", ErrInvalidConfig)
	}
	if c.Target == "" {
		return fmt.Errorf("%w: no target", ErrInvalidConfig)
	}
	if c.Host == "" {
		c.Host = platform.Host()
	}

	if c.Prefix == "" {
		c.Prefix = c.Profile.Prefix
	}
	if !path.IsAbs(c.Prefix) {
		return fmt.Errorf("%w: prefix %q is not absolute", ErrInvalidConfig, c.Prefix)
	}
	c.Prefix = path.Clean(c.Prefix)

	dirs := []struct {
		name string
		dir  *string
	}{
		{"sources", &c.SourcesDir},
		{"build", &c.BuildDir},
		{"stage", &c.StageDir},
		{"image", &c.ImageDir},
	}
	for _, d := range dirs {
		if *d.dir == "" {
			return fmt.Errorf("%w: no %s directory", ErrInvalidConfig, d.name)
		}
		abs, err := filepath.Abs(*d.dir)
		if err != nil {
			return fmt.Errorf("%w: %s directory: %w", ErrInvalidConfig, d.name, err)
		}
		*d.dir = abs
	}

	if c.ResourcesDir != "" {
		abs, err := filepath.Abs(c.ResourcesDir)
		if err != nil {
			return fmt.Errorf("%w: resources directory: %w", ErrInvalidConfig, err)
		}
		c.ResourcesDir = abs
	}

	// Cleaning removes the build directory and packaging archives the stage.
	nested := []struct {
		inner, outer string
		dir, parent  string
		why          string
	}{
		{"sources", "build", c.SourcesDir, c.BuildDir, "cleaning would delete the sources"},
		{"stage", "build", c.StageDir, c.BuildDir, "cleaning would delete the stage"},
		{"image", "build", c.ImageDir, c.BuildDir, "cleaning would delete earlier bundles"},
		{"image", "stage", c.ImageDir, c.StageDir, "bundles would be packaged into themselves"},
	}
	for _, n := range nested {
		if within(n.parent, n.dir) {
			return fmt.Errorf("%w: %s directory %s must not be inside the %s directory, %s", ErrInvalidConfig, n.inner, n.dir, n.outer, n.why)
		}
	}

	if _, err := archive.New(c.Archiver, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Reports whether dir is parent or lies below it. Both must be absolute
// and clean.
func within(parent, dir string) bool {
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
