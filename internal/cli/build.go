package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/pqbuild/internal/pipeline"
)

// Represents the 'pqbuild build' command, also run when no command is
// given.
type BuildCmd struct {
	BuildFlags `embed:""`
}

// Executes the build command.
//
// Runs the pipeline, then prints the report and the post-build
// instructions to standard output.
func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	d, err := deps()
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, cfg, d)
	if err != nil {
		return err
	}

	for _, line := range report.Lines() {
		fmt.Println(line)
	}
	if report.Instructions != "" {
		fmt.Println()
		fmt.Println(report.Instructions)
	}
	return nil
}
