// Package vad measures how much of each clip is speech.
package vad

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Segment is a speech region in samples at the clip's sample rate.
type Segment struct {
	Start int
	End   int
}

// Duration converts the segment length to time at sampleRate.
func (s Segment) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 || s.End <= s.Start {
		return 0
	}
	return time.Duration(int64(s.End-s.Start) * int64(time.Second) / int64(sampleRate))
}

// Detector finds the speech regions of a clip.
type Detector interface {
	Detect(ctx context.Context, c audio.Clip) ([]Segment, error)
}

// Record is the duration report of one clip.
type Record struct {
	Clip   string        // Path of the clip file.
	Total  time.Duration // Length of the clip audio.
	Speech time.Duration // Summed length of the detected speech segments.
}

// Ratio returns the share of the clip detected as speech.
func (r Record) Ratio() float64 {
	if r.Total <= 0 {
		return 0
	}
	return r.Speech.Seconds() / r.Total.Seconds()
}

// Estimate runs d over every clip in order and returns one Record per clip.
// Speech is the plain sum of segment lengths; overlapping segments are
// counted twice. The first detector failure aborts the estimate.
func Estimate(ctx context.Context, clips []audio.Clip, d Detector) ([]Record, error) {
	records := make([]Record, 0, len(clips))
	for _, c := range clips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segments, err := d.Detect(ctx, c)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrDetectionFailed, c.Path, err)
		}

		records = append(records, Record{
			Clip:   c.Path,
			Total:  c.Duration(),
			Speech: SpeechDuration(segments, c.Waveform.SampleRate()),
		})
	}
	return records, nil
}

// SpeechDuration sums segment lengths in samples and converts the total at
// sampleRate. Empty or inverted segments count as zero.
func SpeechDuration(segments []Segment, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	var samples int64
	for _, s := range segments {
		if s.End > s.Start {
			samples += int64(s.End - s.Start)
		}
	}
	return time.Duration(samples * int64(time.Second) / int64(sampleRate))
}
