package fsutil

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrRemove = fmt.Errorf("removing directory: %w", errdefs.ErrFailedPrecondition)
	ErrCopy   = errors.New("copy failed")
)
