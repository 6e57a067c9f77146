package source

import (
	"fmt"
	"path"
	"strings"
)

// Remote git repository and where to clone it.
type Repository struct {
	Name   string `yaml:"name"`             // Display name.
	URL    string `yaml:"url"`              // Clone URL.
	Branch string `yaml:"branch,omitempty"` // Branch to clone. Empty uses the remote default.
	Commit string `yaml:"commit,omitempty"` // Commit to check out after cloning. Empty tracks the branch.
	Dir    string `yaml:"dir"`              // Directory name below the sources directory.
}

// Reports whether the repository is pinned to a commit.
func (r Repository) Pinned() bool {
	return r.Commit != ""
}

// Returns the local directory name, defaulting to the last URL element
// without a ".git" suffix.
func (r Repository) LocalDir() string {
	if r.Dir != "" {
		return r.Dir
	}
	return strings.TrimSuffix(path.Base(r.URL), ".git")
}

// Validates the repository reference.
//
// A URL is required. A pinned commit requires an explicit Dir, since the
// checkout has to run inside a known clone directory. Dir must be a single
// path element.
func (r Repository) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("%w: %s: missing url", ErrInvalidRepository, r.Name)
	}
	if r.Pinned() && r.Dir == "" {
		return fmt.Errorf("%w: %s: a pinned commit requires a directory", ErrInvalidRepository, r.Name)
	}
	if dir := r.LocalDir(); dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
		return fmt.Errorf("%w: %s: invalid directory %q", ErrInvalidRepository, r.Name, dir)
	}
	return nil
}

// Returns the repository name and, when pinned, the short commit.
func (r Repository) String() string {
	name := r.Name
	if name == "" {
		name = r.LocalDir()
	}
	if r.Pinned() {
		commit := r.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		return name + "@" + commit
	}
	if r.Branch != "" {
		return name + "@" + r.Branch
	}
	return name
}
