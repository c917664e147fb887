package audio

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// DefaultPrefix is the file name prefix of exported clips.
const DefaultPrefix = "chunk_test_"

// Exporter writes clips as WAV files named <dir>/<prefix><index>.wav.
type Exporter struct {
	dir    string
	prefix string
	hook   func(Clip)

	// Injected dependencies for testing.
	dirs    dirCreator
	files   fileCreator
	remover fileRemover
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithExportHook sets a callback run by ExportAll after each clip is written.
func WithExportHook(fn func(Clip)) ExporterOption {
	return func(e *Exporter) {
		e.hook = fn
	}
}

// withDirCreator sets a custom directory creator (for testing).
func withDirCreator(d dirCreator) ExporterOption {
	return func(e *Exporter) {
		e.dirs = d
	}
}

// withFileCreator sets a custom file creator (for testing).
func withFileCreator(f fileCreator) ExporterOption {
	return func(e *Exporter) {
		e.files = f
	}
}

// withExportFileRemover sets a custom file remover (for testing).
func withExportFileRemover(r fileRemover) ExporterOption {
	return func(e *Exporter) {
		e.remover = r
	}
}

// NewExporter creates an Exporter for dir. An empty prefix uses DefaultPrefix.
func NewExporter(dir, prefix string, opts ...ExporterOption) *Exporter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	e := &Exporter{
		dir:     dir,
		prefix:  prefix,
		dirs:    osDirCreator{},
		files:   osFileCreator{},
		remover: osFileRemover{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the output directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// PathFor returns the file path for the clip with the given index.
func (e *Exporter) PathFor(index int) string {
	return filepath.Join(e.dir, e.prefix+strconv.Itoa(index)+".wav")
}

// Export writes c to disk and returns a copy of c with Path set.
// The output directory is created if missing. A partially written file is removed.
func (e *Exporter) Export(c Clip) (Clip, error) {
	if err := e.dirs.MkdirAll(e.dir, 0o750); err != nil {
		return Clip{}, fmt.Errorf("%w: create directory %s: %v", ErrExportFailed, e.dir, err)
	}

	path := e.PathFor(c.Index)
	f, err := e.files.Create(path)
	if err != nil {
		return Clip{}, fmt.Errorf("%w: create %s: %v", ErrExportFailed, path, err)
	}

	if err := EncodeWAV(f, c.Waveform); err != nil {
		_ = f.Close()
		_ = e.remover.Remove(path)
		return Clip{}, fmt.Errorf("%w: %s: %v", ErrExportFailed, path, err)
	}
	if err := f.Close(); err != nil {
		_ = e.remover.Remove(path)
		return Clip{}, fmt.Errorf("%w: close %s: %v", ErrExportFailed, path, err)
	}

	c.Path = path
	return c, nil
}

// ExportAll exports clips in order and stops at the first failure.
// Clips exported before the failure stay on disk.
func (e *Exporter) ExportAll(clips []Clip) ([]Clip, error) {
	out := make([]Clip, 0, len(clips))
	for _, c := range clips {
		exported, err := e.Export(c)
		if err != nil {
			return nil, err
		}
		if e.hook != nil {
			e.hook(exported)
		}
		out = append(out, exported)
	}
	return out, nil
}
