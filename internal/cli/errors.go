package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrUnsupportedBackend indicates an unknown diarizer or vad backend name.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrInvalidFlag indicates a flag value that fails validation.
	ErrInvalidFlag = errors.New("invalid flag value")
)
