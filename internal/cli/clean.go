package cli

import (
	"context"

	"github.com/cruciblehq/pqbuild/internal/pipeline"
)

// Represents the 'pqbuild clean' command.
type CleanCmd struct {
	BuildFlags `embed:""`
}

// Executes the clean command. Read-only files left by earlier builds are
// removed as well.
func (c *CleanCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	return pipeline.Clean(cfg)
}
