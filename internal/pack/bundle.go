package pack

import (
	"fmt"
	"path/filepath"

	"github.com/cruciblehq/pqbuild/internal/archive"
	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
)

// Produced artifact.
type Bundle struct {
	Path   string
	Size   int64
	Digest digest.Digest
}

// Returns the file name of the bundle.
func (b Bundle) Name() string {
	return filepath.Base(b.Path)
}

// Returns the size in human-readable form, as in "4.2 MB".
func (b Bundle) HumanSize() string {
	return humanize.Bytes(uint64(b.Size))
}

// Formats the bundle as "<name> (<size>, <digest>)".
func (b Bundle) String() string {
	return fmt.Sprintf("%s (%s, %s)", b.Name(), b.HumanSize(), b.Digest)
}

// Describes the finished file at path.
func newBundle(path string) (Bundle, error) {
	d, size, err := archive.DigestFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrPackage, err)
	}
	return Bundle{Path: path, Size: size, Digest: d}, nil
}
