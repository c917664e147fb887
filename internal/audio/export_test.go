package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// InvertRanges exports invertRanges for testing.
var InvertRanges = invertRanges

// PadRanges exports padRanges for testing.
var PadRanges = padRanges

// --- Exporter dependency injection exports ---

// DirCreator exports dirCreator interface for testing.
type DirCreator = dirCreator

// FileCreator exports fileCreator interface for testing.
type FileCreator = fileCreator

// FileRemover exports fileRemover interface for testing.
type FileRemover = fileRemover

// WriteSeekCloser exports writeSeekCloser interface for testing.
type WriteSeekCloser = writeSeekCloser

// WithDirCreator exports withDirCreator for testing.
var WithDirCreator = withDirCreator

// WithFileCreator exports withFileCreator for testing.
var WithFileCreator = withFileCreator

// WithExportFileRemover exports withExportFileRemover for testing.
var WithExportFileRemover = withExportFileRemover
