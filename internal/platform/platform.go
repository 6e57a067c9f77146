package platform

import (
	"fmt"
	"strings"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Operating system, named as GOOS names it.
type OS string

const (
	Linux   OS = "linux"
	Darwin  OS = "darwin"
	Windows OS = "windows"
)

// Lists the operating systems a build can target.
func Targets() []OS {
	return []OS{Linux, Darwin, Windows}
}

// Parses an operating system name in any case, so "Linux" and "linux" are
// equivalent.
func Parse(s string) (OS, error) {
	o := OS(strings.ToLower(strings.TrimSpace(s)))
	switch o {
	case Linux, Darwin, Windows:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOS, s)
}

// Returns the capitalized name, as used in messages.
func (o OS) Title() string {
	switch o {
	case Darwin:
		return "Darwin"
	case Linux:
		return "Linux"
	case Windows:
		return "Windows"
	}
	return string(o)
}

// Returns the host platform.
func HostPlatform() ocispec.Platform {
	return platforms.DefaultSpec()
}

// Returns the host operating system.
func Host() OS {
	return OS(HostPlatform().OS)
}

// Formats the target platform with the host architecture, as in
// "linux/amd64".
func Describe(target OS) string {
	p := HostPlatform()
	p.OS = string(target)
	p.OSVersion = ""
	p.OSFeatures = nil
	return platforms.Format(platforms.Normalize(p))
}
