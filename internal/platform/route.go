package platform

import "fmt"

// How the OpenSSL libraries are built.
type Flavor string

const (
	FlavorNone Flavor = ""     // Not built on this host.
	FlavorUnix Flavor = "unix" // Configure and make.
	FlavorMSVC Flavor = "msvc" // Perl Configure and nmake, x86 and x64.
)

// Stages to run for a target on a host.
type Strategy struct {
	Target           OS
	Host             OS
	OpenSSL          bool   // Build the OpenSSL libraries.
	OpenVPN          bool   // Build OpenVPN.
	Images           bool   // Package the staged tree.
	StopAfterOpenSSL bool   // Nothing runs after the OpenSSL stage.
	OpenSSLFlavor    Flavor // Toolchain for the OpenSSL stage.
	CrossCompile     bool   // OpenVPN is cross compiled with mingw.
	Advisory         string // Note for the operator about skipped stages.
}

type route struct {
	target, host OS
}

var routes = map[route]Strategy{
	{Linux, Linux}: {
		OpenSSL:       true,
		OpenVPN:       true,
		Images:        true,
		OpenSSLFlavor: FlavorUnix,
	},
	{Darwin, Darwin}: {
		OpenSSL:       true,
		OpenVPN:       true,
		Images:        true,
		OpenSSLFlavor: FlavorUnix,
	},
	{Windows, Linux}: {
		OpenVPN:      true,
		Images:       true,
		CrossCompile: true,
		Advisory:     "OpenSSL for Windows cannot be cross compiled; build it on a Windows host and copy libeay32.dll and ssleay32.dll into the stage x86 and x64 directories",
	},
	{Windows, Windows}: {
		OpenSSL:          true,
		StopAfterOpenSSL: true,
		OpenSSLFlavor:    FlavorMSVC,
		Advisory:         "OpenVPN for Windows is built on a Linux host with mingw; only the OpenSSL libraries are built here",
	},
}

// Returns the stages to run when building target on host.
//
// Returns [ErrUnsupportedPlatform] for combinations with no route, such as
// building Darwin on Linux.
func Select(target, host OS) (Strategy, error) {
	s, ok := routes[route{target, host}]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: building %s on %s", ErrUnsupportedPlatform, target.Title(), host.Title())
	}
	s.Target, s.Host = target, host
	return s, nil
}

// Reports whether any stage was skipped by routing.
func (s Strategy) Restricted() bool {
	return !s.OpenSSL || !s.OpenVPN || !s.Images
}
