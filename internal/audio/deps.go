package audio

import (
	"io"
	"os"
)

// writeSeekCloser is the file handle the WAV encoder writes into.
// The encoder seeks back to patch RIFF sizes once samples are written.
type writeSeekCloser interface {
	io.WriteSeeker
	io.Closer
}

// dirCreator creates directories.
type dirCreator interface {
	MkdirAll(path string, perm os.FileMode) error
}

// fileCreator creates or truncates files.
type fileCreator interface {
	Create(name string) (writeSeekCloser, error)
}

// fileRemover removes files.
type fileRemover interface {
	Remove(name string) error
}

// --- Default implementations using real OS functions ---

// osDirCreator implements dirCreator using os.MkdirAll.
type osDirCreator struct{}

func (osDirCreator) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// osFileCreator implements fileCreator using os.Create.
type osFileCreator struct{}

func (osFileCreator) Create(name string) (writeSeekCloser, error) {
	return os.Create(name) // #nosec G304 -- name is built from the configured output dir
}

// osFileRemover implements fileRemover using os.Remove.
type osFileRemover struct{}

func (osFileRemover) Remove(name string) error {
	return os.Remove(name)
}
