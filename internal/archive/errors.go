package archive

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrCreate      = errors.New("archive creation failed")
	ErrExtract     = errors.New("archive extraction failed")
	ErrUnsafePath  = fmt.Errorf("archive member escapes destination: %w", errdefs.ErrInvalidArgument)
	ErrUnknownKind = fmt.Errorf("unknown archiver: %w", errdefs.ErrInvalidArgument)
)
