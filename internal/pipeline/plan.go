package pipeline

import (
	"fmt"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/platform"
)

// Pipeline state.
type State string

const (
	StateClean           State = "clean"
	StateAcquire         State = "acquire"
	StateBuildDependency State = "build-dependency"
	StateBuildProduct    State = "build-product"
	StatePackage         State = "package"
	StateReport          State = "report"
)

// Returns the states in execution order.
func States() []State {
	return []State{StateClean, StateAcquire, StateBuildDependency, StateBuildProduct, StatePackage, StateReport}
}

// Decision for a single state.
type Step struct {
	State  State
	Run    bool
	Reason string // Why the state is skipped. Empty when it runs.
	Forced bool   // Skipped by routing rather than by request.
}

// Decided sequence of states for a configuration.
type Plan struct {
	Strategy platform.Strategy
	Steps    []Step
}

// Decides which states run for cfg. Routing skips take precedence over
// requested skips.
func NewPlan(cfg *Config) (*Plan, error) {
	strategy, err := platform.Select(cfg.Target, cfg.Host)
	if err != nil {
		return nil, err
	}

	routed := fmt.Sprintf("not built for %s on %s", cfg.Target.Title(), cfg.Host.Title())
	stopped := fmt.Sprintf("only OpenSSL is built for %s on %s", cfg.Target.Title(), cfg.Host.Title())

	steps := []Step{
		decide(StateClean, !cfg.NoClean, "--no-clean", true, ""),
		decide(StateAcquire, !cfg.Skip.Download, "--skip-download", true, ""),
		decide(StateBuildDependency, !cfg.Skip.OpenSSL, "--skip-openssl", strategy.OpenSSL, routed),
		decide(StateBuildProduct, !cfg.Skip.OpenVPN, "--skip-openvpn", strategy.OpenVPN, routed),
		decide(StatePackage, !cfg.Skip.Images, "--skip-images", strategy.Images, routed),
		decide(StateReport, true, "", true, ""),
	}

	if strategy.StopAfterOpenSSL {
		for i := range steps {
			switch steps[i].State {
			case StateBuildProduct, StatePackage:
				steps[i] = Step{State: steps[i].State, Reason: stopped, Forced: true}
			}
		}
	}

	return &Plan{Strategy: strategy, Steps: steps}, nil
}

func decide(state State, requested bool, flag string, routed bool, routeReason string) Step {
	switch {
	case !routed:
		return Step{State: state, Reason: routeReason, Forced: true}
	case !requested:
		return Step{State: state, Reason: "skipped with " + flag}
	}
	return Step{State: state, Run: true}
}

// Reports whether state runs.
func (p *Plan) Runs(state State) bool {
	for _, s := range p.Steps {
		if s.State == state {
			return s.Run
		}
	}
	return false
}

// Returns the human-readable description of what the run will do, one
// line per state.
func (p *Plan) Summary(cfg *Config) []string {
	lines := []string{fmt.Sprintf("Building %s on %s (%s).", cfg.Target.Title(), cfg.Host.Title(), platform.Describe(cfg.Target))}

	for _, s := range p.Steps {
		if line := describe(s, cfg); line != "" {
			lines = append(lines, line)
		}
	}

	if p.Runs(StateBuildProduct) && p.Strategy.CrossCompile {
		lines = append(lines, "OpenVPN is cross compiled with mingw.")
	}
	if p.Runs(StateBuildDependency) && p.Strategy.OpenSSLFlavor == platform.FlavorUnix {
		if cfg.Skip.Test {
			lines = append(lines, `Skip running "make test" on the OpenSSL build.`)
		} else {
			lines = append(lines, `Running "make test" on the OpenSSL build.`)
		}
	}
	return lines
}

func describe(s Step, cfg *Config) string {
	switch s.State {
	case StateClean:
		if s.Run {
			return fmt.Sprintf("Cleaning %s.", cfg.BuildDir)
		}
		return fmt.Sprintf("Keeping the contents of %s.", cfg.BuildDir)

	case StateAcquire:
		if s.Run {
			return fmt.Sprintf("Downloading sources to %s.", cfg.SourcesDir)
		}
		return fmt.Sprintf("Skip downloading sources. They are expected in %s.", cfg.SourcesDir)

	case StateBuildDependency:
		if s.Run {
			return "Building OpenSSL."
		}
		return fmt.Sprintf("Skip building OpenSSL (%s). It is expected installed to %q.", s.Reason, cfg.StageDir)

	case StateBuildProduct:
		if s.Run {
			return "Building OpenVPN."
		}
		return fmt.Sprintf("Skip building OpenVPN (%s).", s.Reason)

	case StatePackage:
		if s.Run {
			return fmt.Sprintf("Creating packed images of the build binaries in %s.", cfg.ImageDir)
		}
		return fmt.Sprintf("Skip building images from %s (%s).", cfg.StageDir, s.Reason)
	}
	return ""
}

// Formats the plan as a table of states and decisions.
func (p *Plan) String() string {
	var b strings.Builder
	for _, s := range p.Steps {
		decision := "run"
		if !s.Run {
			decision = "skip: " + s.Reason
		}
		fmt.Fprintf(&b, "%-17s %s\n", s.State, decision)
	}
	return b.String()
}
