package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidWAV indicates the input is not a readable WAV stream.
var ErrInvalidWAV = errors.New("invalid wav file")

// ErrUnsupportedFormat indicates a sample layout the splitter cannot process.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrInvalidBounds indicates inconsistent clip duration or silence settings.
var ErrInvalidBounds = errors.New("invalid split bounds")

// ErrExportFailed indicates a clip could not be written to disk.
var ErrExportFailed = errors.New("clip export failed")
