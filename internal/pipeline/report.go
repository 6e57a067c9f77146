package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cruciblehq/pqbuild/internal/pack"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/resources"
)

// Outcome of a successful run.
type Report struct {
	RunID        string        // Unique identifier of the run, also logged.
	Target       platform.OS   // Built-for operating system.
	Host         platform.OS   // Building operating system.
	Started      time.Time     // Start of the run.
	Duration     time.Duration // Wall time of the run.
	Steps        []Step        // Executed and skipped states, in order.
	Bundles      []pack.Bundle // Produced artifacts.
	Advisory     string        // Routing advisory, if any.
	Instructions string        // Post-build instructions for the operator.
}

// Returns the states that ran.
func (r *Report) Executed() []State {
	var states []State
	for _, s := range r.Steps {
		if s.Run {
			states = append(states, s.State)
		}
	}
	return states
}

// Returns the report as lines for the terminal.
func (r *Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("Build %s finished in %s (started %s).", r.RunID, r.Duration.Round(time.Millisecond), humanize.Time(r.Started)),
	}
	for _, s := range r.Steps {
		if s.Run {
			lines = append(lines, fmt.Sprintf("  %-17s done", s.State))
		} else {
			lines = append(lines, fmt.Sprintf("  %-17s skipped, %s", s.State, s.Reason))
		}
	}
	if len(r.Bundles) == 0 {
		lines = append(lines, "No bundles were produced.")
	}
	for _, b := range r.Bundles {
		lines = append(lines, "Produced "+b.String())
	}
	if r.Advisory != "" {
		lines = append(lines, r.Advisory)
	}
	return lines
}

// Returns the operator instructions shown after a build for cfg. Linux
// builds explain how to deploy the staged tarball, Windows builds what is
// left to do by hand. Darwin builds have none.
func Instructions(cfg *Config, bundles []pack.Bundle) string {
	switch {
	case cfg.Target == platform.Linux:
		return linuxInstructions(cfg, bundles)
	case cfg.Target == platform.Windows && cfg.Host == platform.Linux:
		return "The OpenVPN installer was built and needs to be tested on a Windows machine."
	case cfg.Target == platform.Windows && cfg.Host == platform.Windows:
		return fmt.Sprintf("Only the OpenSSL library was built. OpenVPN needs to be built with mingw.\n\n"+
			"The %s need to be copied from the x86 or x64 stage.", strings.Join(cfg.Profile.OpenSSL.WindowsLibs, " and "))
	}
	return ""
}

func linuxInstructions(cfg *Config, bundles []pack.Bundle) string {
	tarball := filepath.Join(cfg.ImageDir, cfg.Profile.ArtifactName(string(cfg.Target))+".tar.gz")
	if len(bundles) > 0 {
		tarball = bundles[0].Path
	}
	unit := resources.Data{Product: cfg.Profile.Product}.Unit()
	prefix := cfg.Prefix

	var b strings.Builder
	fmt.Fprintf(&b, "The staged tarball provides a deployable set of binaries for a Linux VM\n")
	fmt.Fprintf(&b, "to bring up a VPN server. The service starts with %s/etc/server.ovpn as\n", prefix)
	fmt.Fprintf(&b, "its configuration. To install, as root:\n\n")
	fmt.Fprintf(&b, "1. cd /\n")
	fmt.Fprintf(&b, "2. tar xvzf %s\n", tarball)
	fmt.Fprintf(&b, "3. Create %s/etc/server.ovpn and the cert/key files it references.\n", prefix)
	fmt.Fprintf(&b, "4. %s/sbin/initialsetup.sh\n\n", prefix)
	fmt.Fprintf(&b, "To upgrade an existing installation:\n\n")
	fmt.Fprintf(&b, "1. systemctl stop %s\n", unit)
	fmt.Fprintf(&b, "2. cd /\n")
	fmt.Fprintf(&b, "3. tar xvzf %s\n", tarball)
	fmt.Fprintf(&b, "4. systemctl start %s\n", unit)
	return b.String()
}
