package source

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrAcquire           = errors.New("source acquisition failed")
	ErrInvalidRepository = fmt.Errorf("invalid repository: %w", errdefs.ErrInvalidArgument)
	ErrPinnedExists      = fmt.Errorf("pinned repository cannot be reused: %w", errdefs.ErrFailedPrecondition)
	ErrCacheCorrupt      = fmt.Errorf("cache archive does not match its digest: %w", errdefs.ErrDataLoss)
)
