package runner

import (
	"sort"
	"strings"
)

// Environment overrides applied on top of the inherited environment.
//
// A nil value removes the variable from the child environment; any other
// value sets it, including the empty string.
type Env map[string]*string

// Returns a pointer to v, for use as an [Env] value.
func Value(v string) *string {
	return &v
}

// Returns a copy of e with the entries of other applied on top.
func (e Env) With(other Env) Env {
	merged := make(Env, len(e)+len(other))
	for k, v := range e {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Applies the overrides to a base environment in "KEY=value" form.
//
// Malformed base entries (no "=") are dropped. The result is sorted by key so
// that the child environment is deterministic.
func (e Env) Apply(base []string) []string {
	merged := make(map[string]string, len(base)+len(e))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range e {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = *v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+merged[k])
	}
	return result
}

// Parses the output of "set" (Windows) or "env" (Unix) into an [Env] that
// sets every listed variable.
//
// Lines without "=" and lines starting with "=" (the per-drive working
// directory entries cmd.exe prints) are ignored. Carriage returns are
// stripped.
func ParseEnviron(output string) Env {
	env := make(Env)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		k, v, ok := strings.Cut(line, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = Value(v)
	}
	return env
}
