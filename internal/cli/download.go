package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/cruciblehq/pqbuild/internal/pipeline"
)

// Represents the 'pqbuild download' command.
type DownloadCmd struct {
	BuildFlags `embed:""`
}

// Executes the download command.
//
// Clones or updates every repository of the profile and prints the cache
// archives that were written.
func (c *DownloadCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	d, err := deps()
	if err != nil {
		return err
	}

	entries, err := pipeline.Download(ctx, cfg, d)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%s (%s, %s)\n", e.Archive, humanize.Bytes(uint64(e.Size)), e.Digest)
	}
	return nil
}
