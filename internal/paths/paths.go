package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory naming.
	toolName = "pqbuild"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Permission mode for installed scripts.
	DefaultExecMode os.FileMode = 0755
)

// Names of the working areas created under the base directory.
const (
	SourcesDirName = "sources"
	BuildDirName   = "build"
	StageDirName   = "stage"
	ImageDirName   = "images"
)

// Default directory holding cloned repositories and their cache archives.
func Sources(base string) string {
	return filepath.Join(base, SourcesDirName)
}

// Default directory where source trees are restored and built.
func Build(base string) string {
	return filepath.Join(base, BuildDirName)
}

// Default staging directory, mirroring the final install prefix.
func Stage(base string) string {
	return filepath.Join(base, StageDirName)
}

// Default directory for packaged archives and installers.
func Images(base string) string {
	return filepath.Join(base, ImageDirName)
}

// Directory searched for user-provided product profiles.
//
//	Linux:   $XDG_CONFIG_HOME/pqbuild/profiles
//	macOS:   ~/Library/Application Support/pqbuild/profiles
func Profiles() string {
	return filepath.Join(xdg.ConfigHome, toolName, "profiles")
}

// Returns the path of a user profile with the given name, searching the XDG
// config home and the XDG config dirs. Returns an error if no such file
// exists.
func FindProfile(name string) (string, error) {
	return xdg.SearchConfigFile(filepath.Join(toolName, "profiles", name+".yaml"))
}

// Returns the current working directory, or "." when it cannot be
// determined.
func Cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
