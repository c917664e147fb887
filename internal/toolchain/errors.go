package toolchain

import "errors"

// ErrNotFound indicates a required external binary could not be located.
var ErrNotFound = errors.New("tool not found")

// ErrCommandFailed indicates an external tool exited with an error.
var ErrCommandFailed = errors.New("command failed")
