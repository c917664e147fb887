// Package diarize keeps the clips that contain exactly one speaker.
package diarize

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Track is one speaker turn within a clip.
type Track struct {
	Start   time.Duration
	End     time.Duration
	Speaker string
}

// Result is the speaker segmentation of one audio file.
type Result struct {
	Tracks []Track
}

// Speakers returns the distinct speaker labels in first-seen order.
// An empty label is a speaker of its own, so an unlabeled turn next to a
// labeled one makes the clip multi-speaker.
func (r Result) Speakers() []string {
	seen := make(map[string]bool, len(r.Tracks))
	var out []string
	for _, t := range r.Tracks {
		if seen[t.Speaker] {
			continue
		}
		seen[t.Speaker] = true
		out = append(out, t.Speaker)
	}
	return out
}

// Diarizer segments an audio file by speaker.
type Diarizer interface {
	Diarize(ctx context.Context, path string) (Result, error)
}

// SpeakerHook observes the speaker labels found for every clip.
type SpeakerHook func(c audio.Clip, speakers []string)

// FilterOption configures Filter.
type FilterOption func(*filterConfig)

type filterConfig struct {
	hook SpeakerHook
}

// WithSpeakerHook sets an observer called once per diarized clip.
func WithSpeakerHook(fn SpeakerHook) FilterOption {
	return func(c *filterConfig) {
		c.hook = fn
	}
}

// Filter returns the clips whose diarization yields exactly one speaker,
// in input order. Clips must already be exported. The first diarizer
// failure aborts the filter; no partial result is returned.
func Filter(ctx context.Context, clips []audio.Clip, d Diarizer, opts ...FilterOption) ([]audio.Clip, error) {
	var cfg filterConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var kept []audio.Clip
	for _, c := range clips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("%w: %s", ErrClipNotExported, c)
		}

		res, err := d.Diarize(ctx, c.Path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrDiarizationFailed, c.Path, err)
		}

		speakers := res.Speakers()
		if cfg.hook != nil {
			cfg.hook(c, speakers)
		}
		if len(speakers) == 1 {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
