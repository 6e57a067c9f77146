package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/runner"
)

// Archiver backed by the system tar binary.
type External struct {
	Runner *runner.Runner

	help *string // Cached "tar --help" output.
}

// Implements [Archiver].
//
// Ownership normalization is requested only for the options the local tar
// advertises. GNU tar supports both; BSD tar supports neither and the
// archive then keeps on-disk ownership.
func (e *External) Create(ctx context.Context, dst string, src Source) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	args := []string{"tar", "-cz"}

	if src.Owner != "" {
		help, err := e.readHelp(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCreate, err)
		}
		owner, group := ownershipFlags(help, src.Owner)
		if owner == "" && group == "" {
			slog.Warn("tar does not support ownership options, archive keeps on-disk owners", "archive", dst)
		}
		args = appendNonEmpty(args, group, owner)
	}

	args = append(args, "-f", dst, src.Name)

	if err := e.Runner.Run(ctx, runner.Command{Args: args, Dir: src.Base}); err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	return nil
}

// Implements [Archiver].
func (e *External) Extract(ctx context.Context, src, dest string) error {
	err := e.Runner.Run(ctx, runner.Command{
		Args: []string{"tar", "-xzf", src},
		Dir:  dest,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}
	return nil
}

// Returns the output of "tar --help", running it only once.
func (e *External) readHelp(ctx context.Context) (string, error) {
	if e.help != nil {
		return *e.help, nil
	}
	out, err := e.Runner.Capture(ctx, runner.Command{Args: []string{"tar", "--help"}})
	if err != nil {
		return "", err
	}
	e.help = &out
	return out, nil
}

// Returns the --owner= and --group= flags supported by a tar whose help
// text is help. Unsupported flags are returned empty.
func ownershipFlags(help, owner string) (ownerFlag, groupFlag string) {
	if strings.Contains(help, "--owner=") {
		ownerFlag = "--owner=" + owner
	}
	if strings.Contains(help, "--group=") {
		groupFlag = "--group=" + owner
	}
	return ownerFlag, groupFlag
}

func appendNonEmpty(args []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			args = append(args, v)
		}
	}
	return args
}
