package audio

import (
	"math"
	"time"
)

// Compile-time interface implementation check.
var _ SilenceDetector = (*EnergyDetector)(nil)

// Default silence detection parameters.
const (
	// DefaultSilenceThreshold is the level below which audio counts as silence.
	// -40 dBFS separates pauses from speech in typical spoken recordings.
	DefaultSilenceThreshold = -40.0

	// DefaultSilenceGap is the minimum silence length that splits two segments.
	DefaultSilenceGap = 500 * time.Millisecond

	// DefaultKeepSilence is the silence kept on each side of a segment.
	DefaultKeepSilence = 100 * time.Millisecond

	// defaultSeekStep is how far the analysis window moves between probes.
	defaultSeekStep = time.Millisecond
)

// Span is a half-open frame range [Start, End) within a waveform.
type Span struct {
	Start int
	End   int
}

// Len returns the number of frames in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// SilenceDetector finds the silence-delimited segments of a waveform.
// Segments are returned in order and never overlap. A waveform that is
// entirely silent yields no segments.
type SilenceDetector interface {
	Segments(w Waveform) []Span
}

// EnergyDetector splits audio wherever the RMS level of a sliding window
// stays at or below a dBFS threshold for at least MinSilence.
// Each segment keeps up to KeepSilence of the surrounding silence; when the
// padding of two neighbours overlaps they meet halfway.
type EnergyDetector struct {
	ThresholdDB float64
	MinSilence  time.Duration
	KeepSilence time.Duration
	SeekStep    time.Duration
}

// NewEnergyDetector returns a detector with the default threshold,
// keep-silence padding and seek step.
func NewEnergyDetector(minSilence time.Duration) *EnergyDetector {
	return &EnergyDetector{
		ThresholdDB: DefaultSilenceThreshold,
		MinSilence:  minSilence,
		KeepSilence: DefaultKeepSilence,
		SeekStep:    defaultSeekStep,
	}
}

// Segments returns the non-silent ranges of w, padded with kept silence.
func (d *EnergyDetector) Segments(w Waveform) []Span {
	n := w.Frames()
	if n == 0 {
		return nil
	}

	silences := d.silentRanges(w)
	nonsilent := invertRanges(silences, n)
	if len(nonsilent) == 0 {
		return nil
	}

	return padRanges(nonsilent, w.FramesFor(d.KeepSilence), n)
}

// silentRanges returns every range where a MinSilence window stays below the threshold.
func (d *EnergyDetector) silentRanges(w Waveform) []Span {
	n := w.Frames()
	window := max(1, w.FramesFor(d.MinSilence))
	if n < window {
		return nil
	}
	step := max(1, w.FramesFor(d.SeekStep))

	energy := squaredPrefix(w)
	threshold := math.Pow(10, d.ThresholdDB/20) * w.MaxAmplitude()
	isSilent := func(start int) bool {
		sum := energy[start+window] - energy[start]
		rms := math.Sqrt(sum / float64(window*w.channels))
		return rms <= threshold
	}

	last := n - window
	var starts []int
	for i := 0; i <= last; i += step {
		if isSilent(i) {
			starts = append(starts, i)
		}
	}
	// The final window position is always probed so trailing silence is not missed.
	if last%step != 0 && isSilent(last) {
		starts = append(starts, last)
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges []Span
	rangeStart, prev := starts[0], starts[0]
	for _, s := range starts[1:] {
		continuous := s == prev+step
		hasGap := s > prev+window
		if !continuous && hasGap {
			ranges = append(ranges, Span{Start: rangeStart, End: prev + window})
			rangeStart = s
		}
		prev = s
	}
	ranges = append(ranges, Span{Start: rangeStart, End: prev + window})
	return ranges
}

// squaredPrefix returns cumulative sums of squared samples per frame,
// so the energy of any frame window is a single subtraction.
func squaredPrefix(w Waveform) []float64 {
	n := w.Frames()
	prefix := make([]float64, n+1)
	for f := range n {
		var sum float64
		for c := range w.channels {
			v := float64(w.data[f*w.channels+c])
			sum += v * v
		}
		prefix[f+1] = prefix[f] + sum
	}
	return prefix
}

// invertRanges turns silent ranges into the non-silent ranges between them.
func invertRanges(silences []Span, n int) []Span {
	if len(silences) == 0 {
		return []Span{{Start: 0, End: n}}
	}
	if silences[0].Start == 0 && silences[0].End >= n {
		return nil
	}

	var out []Span
	prevEnd := 0
	for _, s := range silences {
		if s.Start > prevEnd {
			out = append(out, Span{Start: prevEnd, End: s.Start})
		}
		prevEnd = s.End
	}
	if prevEnd < n {
		out = append(out, Span{Start: prevEnd, End: n})
	}
	return out
}

// padRanges widens each range by keep frames on both sides, clamped to [0, n].
// Overlapping pads between neighbours are split at their midpoint.
func padRanges(ranges []Span, keep, n int) []Span {
	out := make([]Span, len(ranges))
	for i, r := range ranges {
		out[i] = Span{Start: r.Start - keep, End: r.End + keep}
	}
	for i := 0; i < len(out)-1; i++ {
		if out[i+1].Start < out[i].End {
			mid := (out[i].End + out[i+1].Start) / 2
			out[i].End = mid
			out[i+1].Start = mid
		}
	}
	for i := range out {
		out[i].Start = max(out[i].Start, 0)
		out[i].End = min(out[i].End, n)
	}
	return out
}
