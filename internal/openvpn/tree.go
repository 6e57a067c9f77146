package openvpn

import (
	"path/filepath"
	"strings"
)

// Staged install tree: the filesystem layout "make install DESTDIR=Root"
// produces for an install prefix.
type Tree struct {
	Root   string // Staging root, extracted at "/" on the target.
	Prefix string // Absolute install prefix.
}

// Returns the directory of the install prefix below the root.
func (t Tree) PrefixDir() string {
	rel := strings.TrimPrefix(filepath.FromSlash(t.Prefix), string(filepath.Separator))
	return filepath.Join(t.Root, rel)
}

// Returns the library directory.
func (t Tree) Lib() string { return filepath.Join(t.PrefixDir(), "lib") }

// Returns the header directory.
func (t Tree) Include() string { return filepath.Join(t.PrefixDir(), "include") }

// Returns the system binaries directory.
func (t Tree) Sbin() string { return filepath.Join(t.PrefixDir(), "sbin") }

// Returns the configuration directory.
func (t Tree) Etc() string { return filepath.Join(t.PrefixDir(), "etc") }

// Returns the log directory.
func (t Tree) Log() string { return filepath.Join(t.PrefixDir(), "log") }

// Returns the documentation directory.
func (t Tree) Doc() string { return filepath.Join(t.PrefixDir(), "share", "doc", "openvpn") }

// Returns the systemd unit directory. Units are installed relative to the
// staging root, not the prefix, so they land in /etc/systemd/system.
func (t Tree) SystemdUnits() string { return filepath.Join(t.Root, "etc", "systemd", "system") }

// Returns the directory holding prebuilt DLLs for a Windows architecture.
func (t Tree) DLLs(arch string) string { return filepath.Join(t.Root, arch) }
