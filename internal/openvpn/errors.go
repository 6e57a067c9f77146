package openvpn

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrBuild             = errors.New("openvpn build failed")
	ErrMissingSource     = fmt.Errorf("openvpn source tree not found: %w", errdefs.ErrFailedPrecondition)
	ErrMissingDependency = fmt.Errorf("openssl installation not found: %w", errdefs.ErrFailedPrecondition)
)
