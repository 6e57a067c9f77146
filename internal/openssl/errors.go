package openssl

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrBuild            = errors.New("openssl build failed")
	ErrMissingSource    = fmt.Errorf("openssl source tree not found: %w", errdefs.ErrFailedPrecondition)
	ErrToolchainMissing = fmt.Errorf("MSVC toolchain not found: %w", errdefs.ErrNotFound)
	ErrUnsupported      = fmt.Errorf("unsupported openssl build flavor: %w", errdefs.ErrNotImplemented)
)
