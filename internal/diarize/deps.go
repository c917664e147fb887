package diarize

import (
	"io"
	"net/http"
	"os"
)

// httpDoer abstracts HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// fileOpener opens clip files for upload.
type fileOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// osFileOpener implements fileOpener using os.Open.
type osFileOpener struct{}

func (osFileOpener) Open(name string) (io.ReadCloser, error) {
	return os.Open(name) // #nosec G304 -- name is an exported clip path
}
