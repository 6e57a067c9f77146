package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/pqbuild/internal/pipeline"
)

// Represents the 'pqbuild plan' command.
type PlanCmd struct {
	BuildFlags `embed:""`
}

// Executes the plan command.
func (c *PlanCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	plan, err := pipeline.NewPlan(cfg)
	if err != nil {
		return err
	}

	for _, line := range plan.Summary(cfg) {
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Print(plan.String())
	if plan.Strategy.Advisory != "" {
		fmt.Println()
		fmt.Println(plan.Strategy.Advisory)
	}
	return nil
}
