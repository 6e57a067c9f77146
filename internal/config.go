package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

// Output modes of the tool.
type Modes struct {
	Quiet   bool // Only warnings and errors are logged.
	Debug   bool // Debug records are logged. Wins over Quiet.
	Verbose bool // Child process output is streamed and commands are echoed.
}

// Returns the minimum level logged in these modes.
func (m Modes) Level() slog.Level {
	switch {
	case m.Debug:
		return slog.LevelDebug
	case m.Quiet:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

var (
	seeded  Modes                 // Modes set through linker flags.
	current atomic.Pointer[Modes] // Effective modes.
)

// Seeds the modes from the linker flags. Unparseable values leave the mode
// disabled.
func init() {
	seeded = Modes{
		Quiet:   parseFlag(rawQuiet),
		Debug:   parseFlag(rawDebug),
		Verbose: parseFlag(rawVerbose),
	}
	current.Store(&seeded)
}

func parseFlag(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// Returns the effective modes.
func CurrentModes() Modes {
	return *current.Load()
}

// Enables the modes requested on the command line on top of the ones seeded
// at link time. A mode enabled by a linker flag cannot be turned off.
// Returns the effective modes.
func Enable(requested Modes) Modes {
	m := Modes{
		Quiet:   seeded.Quiet || requested.Quiet,
		Debug:   seeded.Debug || requested.Debug,
		Verbose: seeded.Verbose || requested.Verbose,
	}
	current.Store(&m)
	return m
}
