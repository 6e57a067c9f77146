package profile

import (
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrNotFound       = fmt.Errorf("profile not found: %w", errdefs.ErrNotFound)
	ErrInvalidProfile = fmt.Errorf("invalid profile: %w", errdefs.ErrInvalidArgument)
)
