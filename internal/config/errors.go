package config

import "errors"

// ErrUnknownKey indicates a config key the tool does not recognize.
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalidValue indicates a config value that fails validation for its key.
var ErrInvalidValue = errors.New("invalid config value")

// ErrNotDirectory indicates an output directory path points to a file.
var ErrNotDirectory = errors.New("path is not a directory")

// ErrNotWritable indicates an output directory cannot be written to.
var ErrNotWritable = errors.New("directory is not writable")
