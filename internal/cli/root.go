package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/pqbuild/internal"
	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/cruciblehq/pqbuild/internal/logging"
	"github.com/cruciblehq/pqbuild/internal/paths"
	"github.com/cruciblehq/pqbuild/internal/platform"
	"github.com/cruciblehq/pqbuild/internal/profile"
)

// Represents the root command for pqbuild.
var RootCmd struct {
	Quiet     bool        `short:"q" help:"Suppress informational output." env:"PQBUILD_QUIET"`
	Verbose   bool        `short:"v" help:"Stream the output of external tools." env:"PQBUILD_VERBOSE"`
	Debug     bool        `short:"d" help:"Enable debug output." env:"PQBUILD_DEBUG"`
	LogFormat string      `help:"Log format (pretty, json)." enum:"pretty,json" default:"pretty" env:"PQBUILD_LOG_FORMAT"`
	Build     BuildCmd    `cmd:"" default:"withargs" help:"Build OpenSSL and OpenVPN and package the result."`
	Plan      PlanCmd     `cmd:"" help:"Show what a build would do."`
	Download  DownloadCmd `cmd:"" help:"Clone or update the sources and store their cache archives."`
	Clean     CleanCmd    `cmd:"" help:"Remove the build directory."`
	Profiles  ProfilesCmd `cmd:"" help:"List the available product profiles."`
	Version   VersionCmd  `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds post-quantum OpenVPN.\n\nBuilds OpenSSL with the OQS algorithms, builds OpenVPN against it, and packages the result for the target platform."),
		kong.UsageOnError(),
		kong.Vars(vars()),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Returns the interpolation variables used in flag defaults and help.
func vars() kong.Vars {
	targets := make([]string, 0, len(platform.Targets()))
	for _, t := range platform.Targets() {
		targets = append(targets, string(t))
	}

	base := paths.Cwd()
	return kong.Vars{
		"version":   internal.VersionString(),
		"host":      string(platform.Host()),
		"targets":   strings.Join(targets, ", "),
		"archivers": strings.Join(archive.Kinds(), ", "),
		"sources":   paths.Sources(base),
		"build":     paths.Build(base),
		"stage":     paths.Stage(base),
		"images":    paths.Images(base),
		"profiles":  paths.Profiles(),
		"profile":   profile.Default,
	}
}

// Configures the global logger and the mode toggles based on CLI flags.
func configureLogger() {
	modes := internal.Enable(internal.Modes{
		Quiet:   RootCmd.Quiet,
		Debug:   RootCmd.Debug,
		Verbose: RootCmd.Verbose,
	})

	handler := logging.New(os.Stderr, logging.Options{
		Format: logging.Format(RootCmd.LogFormat),
		Level:  modes.Level(),
		Color:  logging.IsTerminal(os.Stderr),
	})
	slog.SetDefault(slog.New(handler))
}
