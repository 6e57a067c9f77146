package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/containerd/platforms"

	"github.com/cruciblehq/pqbuild/internal"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/profile"
)

// Represents the 'pqbuild version' command.
type VersionCmd struct {
	Short bool `help:"Print only the version string."`
}

// Executes the version command.
//
// Prints the version string, followed by the build metadata, the host the
// tool runs on, and the default profile unless --short is given.
func (c *VersionCmd) Run(ctx context.Context) error {
	return c.write(os.Stdout, internal.Info())
}

func (c *VersionCmd) write(w io.Writer, info internal.BuildInfo) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", internal.Name, internal.VersionString()); err != nil {
		return err
	}
	if c.Short {
		return nil
	}

	commit := info.Commit
	if info.Modified {
		commit += " (modified)"
	}

	rows := [][2]string{
		{"version", info.Version},
		{"stage", info.Stage},
		{"commit", commit},
		{"built for", info.Arch},
		{"go", info.Go},
		{"host", fmt.Sprintf("%s (%s)", platforms.Format(platform.HostPlatform()), platform.Host().Title())},
		{"profile", profile.Default},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "  %-10s %s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}
