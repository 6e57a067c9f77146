package pack

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrPackage        = errors.New("packaging failed")
	ErrMissingInstall = fmt.Errorf("staged install not found: %w", errdefs.ErrFailedPrecondition)
	ErrMissingSource  = fmt.Errorf("installer source tree not found: %w", errdefs.ErrFailedPrecondition)
	ErrUnsupported    = fmt.Errorf("no packaging for target: %w", errdefs.ErrNotImplemented)
)
