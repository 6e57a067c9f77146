package platform

import (
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrUnknownOS           = fmt.Errorf("unknown operating system: %w", errdefs.ErrInvalidArgument)
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform combination: %w", errdefs.ErrNotImplemented)
)
