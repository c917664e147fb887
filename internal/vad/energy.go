package vad

import (
	"context"
	"math"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Compile-time interface compliance check.
var _ Detector = (*EnergyDetector)(nil)

// EnergyDetector marks frames whose RMS level reaches a dBFS threshold as
// speech. Speech runs separated by less than MinSilence are joined, then
// runs shorter than MinSpeech are dropped. It needs no model and is
// deterministic, which makes it the fallback when Silero is unavailable.
type EnergyDetector struct {
	ThresholdDB float64
	Frame       time.Duration
	MinSpeech   time.Duration
	MinSilence  time.Duration
}

// NewEnergyDetector returns a detector tuned for close-miked speech at 16 kHz.
func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{
		ThresholdDB: -35,
		Frame:       30 * time.Millisecond,
		MinSpeech:   250 * time.Millisecond,
		MinSilence:  100 * time.Millisecond,
	}
}

// Detect returns the speech segments of c.
func (e *EnergyDetector) Detect(ctx context.Context, c audio.Clip) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := c.Waveform
	samples := w.Float32()
	frame := max(1, w.FramesFor(e.Frame))
	threshold := math.Pow(10, e.ThresholdDB/20)

	var runs []Segment
	open := -1
	for start := 0; start < len(samples); start += frame {
		end := min(start+frame, len(samples))
		loud := rms(samples[start:end]) >= threshold
		switch {
		case loud && open < 0:
			open = start
		case !loud && open >= 0:
			runs = append(runs, Segment{Start: open, End: start})
			open = -1
		}
	}
	if open >= 0 {
		runs = append(runs, Segment{Start: open, End: len(samples)})
	}

	return dropShort(joinClose(runs, w.FramesFor(e.MinSilence)), w.FramesFor(e.MinSpeech)), nil
}

// joinClose merges runs separated by fewer than gap samples.
func joinClose(runs []Segment, gap int) []Segment {
	if len(runs) == 0 {
		return nil
	}
	out := []Segment{runs[0]}
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.Start-last.End < gap {
			last.End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

// dropShort removes runs shorter than minLen samples.
func dropShort(runs []Segment, minLen int) []Segment {
	out := runs[:0]
	for _, r := range runs {
		if r.End-r.Start >= minLen {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
