package pipeline

import "errors"

// ErrInvalidConfig indicates a pipeline Config that cannot run.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")
