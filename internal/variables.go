package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (

	// Name of the tool, used for the binary, the log group, and the XDG
	// subdirectory.
	Name = "pqbuild"

	// String to indicate an undefined variable
	defaultUndefined = "(undefined)"

	// String to indicate a local (non-pipeline) build
	defaultLocalBuild = "(local)"

	// Main branch name used in version strings
	mainBranch = "main"
)

var (
	version   = "" // Version number (e.g., "1.2.3")
	stage     = "" // Development stage or git branch (e.g., "staging", "main")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to stream child process output
)

// Returns the current version.
//
// If the version is not set, returns "(undefined)". A leading "v" or "V" is
// stripped.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(strings.ToLower(v), "v")
}

// Returns the development stage, normally the git branch the binary was
// built from, or "(undefined)".
func Stage() string {
	s := strings.TrimSpace(stage)
	if s == "" {
		return defaultUndefined
	}
	return strings.ToLower(s)
}

// Returns the git commit hash, or "(undefined)".
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// Returns the OS/architecture pair the binary was compiled for.
func Arch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Returns true if any of the version, git commit, or stage linker variables
// is unset.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(gitCommit) == "" ||
		strings.TrimSpace(stage) == ""
}

// Returns a detailed version string.
//
// Local builds return "(local)". Otherwise the string is formatted as
// "<version>+<stage> <git-commit> [<os>/<arch>]", with the stage omitted for
// the main branch.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	s := Stage()
	if s == mainBranch {
		s = ""
	} else {
		s = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), s, GitCommit(), Arch())
}

// Build metadata of the running binary.
type BuildInfo struct {
	Version  string // Release version, or "(undefined)".
	Stage    string // Branch the binary was built from, or "(undefined)".
	Commit   string // Commit the binary was built from, or "(undefined)".
	Modified bool   // The working tree had uncommitted changes (local builds only).
	Arch     string // Compiled-for OS/architecture.
	Go       string // Go toolchain version.
	Local    bool   // Built without release linker flags.
}

// Returns the build metadata.
//
// Local builds have no commit linker flag; their commit is taken from the
// VCS stamp the Go toolchain embeds when building inside a checkout.
func Info() BuildInfo {
	info := BuildInfo{
		Version: Version(),
		Stage:   Stage(),
		Commit:  GitCommit(),
		Arch:    Arch(),
		Go:      runtime.Version(),
		Local:   IsLocal(),
	}

	if info.Commit == defaultUndefined {
		if bi, ok := debug.ReadBuildInfo(); ok {
			info.Commit, info.Modified = vcsStamp(bi.Settings)
		}
	}
	return info
}

// Returns the abbreviated revision and dirty flag from VCS build settings,
// or "(undefined)" when the binary carries no stamp.
func vcsStamp(settings []debug.BuildSetting) (string, bool) {
	commit, modified := defaultUndefined, false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value[:min(len(s.Value), 12)]
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return commit, modified
}
