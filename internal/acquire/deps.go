package acquire

import (
	"context"
	"os"
)

// commandRunner executes external tools and returns their combined output.
// *toolchain.Executor satisfies it.
type commandRunner interface {
	Run(ctx context.Context, path string, args []string) (string, error)
}

// fileSystem abstracts the filesystem operations of the acquirer.
type fileSystem interface {
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
}

// --- Default implementations using real OS functions ---

// osFileSystem implements fileSystem using the os package.
type osFileSystem struct{}

func (osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFileSystem) Remove(name string) error {
	return os.Remove(name)
}
