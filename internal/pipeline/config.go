package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Default output layout.
const (
	DefaultWorkDir      = "."
	DefaultQualifiedDir = "qualified_chunks"
	DefaultFilteredDir  = "filtered_chunks"
)

// Config carries every tunable of a run.
type Config struct {
	Source string // URL or local file.

	WorkDir      string // Holds the canonical downloaded_audio.wav.
	QualifiedDir string
	FilteredDir  string
	Prefix       string

	MinDuration      time.Duration
	MaxDuration      time.Duration
	SilenceGap       time.Duration
	SilenceThreshold float64 // dBFS.
	KeepSilence      time.Duration

	Filter bool // Keep only single-speaker clips.
	Report bool // Print the per-clip speech duration report.
}

// DefaultConfig returns the settings of a full run on source.
func DefaultConfig(source string) Config {
	return Config{
		Source:           source,
		WorkDir:          DefaultWorkDir,
		QualifiedDir:     DefaultQualifiedDir,
		FilteredDir:      DefaultFilteredDir,
		Prefix:           audio.DefaultPrefix,
		MinDuration:      audio.DefaultMinDuration,
		MaxDuration:      audio.DefaultMaxDuration,
		SilenceGap:       audio.DefaultSilenceGap,
		SilenceThreshold: audio.DefaultSilenceThreshold,
		KeepSilence:      audio.DefaultKeepSilence,
		Filter:           true,
		Report:           true,
	}
}

// Validate checks the fields the splitter does not check itself.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: no source given", ErrInvalidConfig)
	}
	if c.WorkDir == "" || c.QualifiedDir == "" {
		return fmt.Errorf("%w: work and qualified directories are required", ErrInvalidConfig)
	}
	if c.Filter {
		if c.FilteredDir == "" {
			return fmt.Errorf("%w: filtered directory is required when filtering", ErrInvalidConfig)
		}
		if filepath.Clean(c.FilteredDir) == filepath.Clean(c.QualifiedDir) {
			return fmt.Errorf("%w: qualified and filtered directories must differ", ErrInvalidConfig)
		}
	}
	return nil
}
