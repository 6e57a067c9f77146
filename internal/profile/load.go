package profile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/paths"
)

//go:embed profiles/*.yaml
var embedded embed.FS

const embeddedOrigin = "embedded"

// Summary of an available profile.
type Summary struct {
	Name        string
	Description string
	Origin      string
}

// Loads the named profile.
//
// A user profile of that name under the XDG config directories takes
// precedence over the embedded one. A name containing a path separator or
// ending in ".yaml" is read as a file path.
func Load(name string) (*Profile, error) {
	if name == "" {
		name = Default
	}

	if strings.HasSuffix(name, ".yaml") || strings.ContainsRune(name, filepath.Separator) {
		return loadFile(name)
	}

	if path, err := paths.FindProfile(name); err == nil {
		slog.Debug("using user profile", "profile", name, "path", path)
		return loadFile(path)
	}

	return loadEmbedded(name)
}

func loadEmbedded(name string) (*Profile, error) {
	f, err := embedded.Open("profiles/" + name + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, err
	}
	p.origin = embeddedOrigin
	return p, nil
}

func loadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.origin = path
	return p, nil
}

// Lists the embedded profiles and those in userDir, sorted by name. User
// profiles shadow embedded ones of the same name. Invalid user profiles are
// logged and skipped.
func List(userDir string) ([]Summary, error) {
	byName := make(map[string]Summary)

	entries, err := fs.ReadDir(embedded, "profiles")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		p, err := loadEmbedded(name)
		if err != nil {
			return nil, err
		}
		byName[p.Name] = Summary{Name: p.Name, Description: p.Description, Origin: embeddedOrigin}
	}

	userFiles, _ := filepath.Glob(filepath.Join(userDir, "*.yaml"))
	for _, path := range userFiles {
		p, err := loadFile(path)
		if err != nil {
			slog.Warn("skipping invalid profile", "path", path, "error", err)
			continue
		}
		byName[p.Name] = Summary{Name: p.Name, Description: p.Description, Origin: path}
	}

	out := make([]Summary, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}
