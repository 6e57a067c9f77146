package archive

import (
	"context"
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cruciblehq/pqbuild/internal/runner"
	"github.com/opencontainers/go-digest"
)

// Archiver implementation.
type Kind string

const (
	KindBuiltin Kind = "builtin" // In-process tar and gzip.
	KindTar     Kind = "tar"     // System tar binary.
)

// Lists the supported archiver kinds.
func Kinds() []string {
	return []string{string(KindBuiltin), string(KindTar)}
}

// Tree to archive.
type Source struct {
	Base  string // Directory member names are relative to.
	Name  string // Entry below Base to archive. "." archives the contents of Base.
	Owner string // User and group recorded for every member. Empty keeps the on-disk ownership.
}

// Creates and extracts .tar.gz archives.
type Archiver interface {

	// Writes the tree described by src to the archive at dst, replacing any
	// existing file.
	Create(ctx context.Context, dst string, src Source) error

	// Extracts the archive at src into the existing directory dest.
	Extract(ctx context.Context, src, dest string) error
}

// Returns the archiver for kind. The runner is used by [KindTar].
func New(kind Kind, r *runner.Runner) (Archiver, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindBuiltin, "":
		return Builtin{}, nil
	case KindTar:
		return &External{Runner: r}, nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
}

// Returns the sha256 digest of the file at path.
func DigestFile(path string) (digest.Digest, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	counter := &countingReader{r: f}
	d, err := digest.FromReader(counter)
	if err != nil {
		return "", 0, err
	}
	return d, counter.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
