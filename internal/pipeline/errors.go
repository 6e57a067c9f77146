package pipeline

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrBuild         = errors.New("build failed")
	ErrInvalidConfig = fmt.Errorf("invalid build configuration: %w", errdefs.ErrInvalidArgument)
	ErrPrepare       = errors.New("preparing directories failed")
)
