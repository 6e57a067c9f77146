package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/cruciblehq/pqbuild/internal/logging"
	"github.com/cruciblehq/pqbuild/internal/paths"
	"github.com/cruciblehq/pqbuild/internal/profile"
)

// Represents the 'pqbuild profiles' command.
type ProfilesCmd struct{}

// Executes the profiles command.
//
// Lists the built-in profiles and the user profiles, marking the default.
// User profiles shadow built-in profiles of the same name.
func (c *ProfilesCmd) Run(ctx context.Context) error {
	summaries, err := profile.List(paths.Profiles())
	if err != nil {
		return err
	}

	name := lipgloss.NewStyle()
	if logging.IsTerminal(os.Stdout) {
		name = name.Bold(true)
	}

	width := 0
	for _, s := range summaries {
		width = max(width, len(s.Name))
	}

	for _, s := range summaries {
		marker := " "
		if s.Name == profile.Default {
			marker = "*"
		}
		fmt.Printf("%s %s  %s\n", marker, name.Width(width).Render(s.Name), s.Description)
		fmt.Printf("  %*s  from %s\n", width, "", s.Origin)
	}
	return nil
}
