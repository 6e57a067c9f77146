package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/pqbuild/internal"
	"github.com/cruciblehq/pqbuild/internal/cli"
	"github.com/cruciblehq/pqbuild/internal/logging"
	"github.com/cruciblehq/pqbuild/internal/paths"
)

// The entry point for pqbuild.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("pqbuild is running",
		"pid", os.Getpid(),
		"cwd", paths.Cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is replaced after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logging.New(os.Stderr, logging.Options{
		Level: internal.CurrentModes().Level(),
		Color: logging.IsTerminal(os.Stderr),
	})
	return slog.New(handler)
}
