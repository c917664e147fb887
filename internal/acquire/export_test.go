package acquire

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// DownloadArgs exports downloadArgs for testing.
var DownloadArgs = downloadArgs

// TranscodeArgs exports transcodeArgs for testing.
var TranscodeArgs = transcodeArgs

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// FileSystem exports fileSystem interface for testing.
type FileSystem = fileSystem

// WithCommandRunner exports withCommandRunner for testing.
var WithCommandRunner = withCommandRunner

// WithFileSystem exports withFileSystem for testing.
var WithFileSystem = withFileSystem
