package audio_test

// Notes:
// - Most cases run at 1 kHz so one frame is one millisecond and the 1 ms seek
//   step probes every frame; expected spans can then be written by hand.
// - Synthetic tones sit well above -40 dBFS and silence is digital zero, so a
//   window containing a single tone frame is never silent.

import (
	"reflect"
	"testing"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// ---------------------------------------------------------------------------
// EnergyDetector.Segments - Silence-delimited spans
// ---------------------------------------------------------------------------

func TestEnergyDetector_Segments(t *testing.T) {
	t.Parallel()

	const rate = 1000
	ms := time.Millisecond

	tests := []struct {
		name     string
		parts    []part
		detector *audio.EnergyDetector
		want     []audio.Span
	}{
		{
			name:     "empty",
			parts:    nil,
			detector: audio.NewEnergyDetector(500 * ms),
			want:     nil,
		},
		{
			name:     "all silent",
			parts:    []part{silence(3 * time.Second)},
			detector: audio.NewEnergyDetector(500 * ms),
			want:     nil,
		},
		{
			name:     "no silence spans everything",
			parts:    []part{tone(2 * time.Second)},
			detector: audio.NewEnergyDetector(500 * ms),
			want:     []audio.Span{{Start: 0, End: 2000}},
		},
		{
			name:     "shorter than min silence",
			parts:    []part{silence(200 * ms)},
			detector: audio.NewEnergyDetector(500 * ms),
			want:     []audio.Span{{Start: 0, End: 200}},
		},
		{
			name:     "short pause does not split",
			parts:    []part{tone(time.Second), silence(300 * ms), tone(time.Second)},
			detector: audio.NewEnergyDetector(500 * ms),
			want:     []audio.Span{{Start: 0, End: 2300}},
		},
		{
			name:     "long pause splits with kept silence",
			parts:    []part{tone(2 * time.Second), silence(time.Second), tone(2 * time.Second)},
			detector: audio.NewEnergyDetector(500 * ms),
			want:     []audio.Span{{Start: 0, End: 2100}, {Start: 2900, End: 5000}},
		},
		{
			name:  "overlapping pads meet halfway",
			parts: []part{tone(2 * time.Second), silence(time.Second), tone(2 * time.Second)},
			detector: &audio.EnergyDetector{
				ThresholdDB: audio.DefaultSilenceThreshold,
				MinSilence:  500 * ms,
				KeepSilence: 600 * ms,
				SeekStep:    ms,
			},
			want: []audio.Span{{Start: 0, End: 2500}, {Start: 2500, End: 5000}},
		},
		{
			name:  "leading and trailing silence trimmed to padding",
			parts: []part{silence(time.Second), tone(time.Second), silence(time.Second)},
			detector: &audio.EnergyDetector{
				ThresholdDB: audio.DefaultSilenceThreshold,
				MinSilence:  500 * ms,
				KeepSilence: 100 * ms,
				SeekStep:    ms,
			},
			want: []audio.Span{{Start: 900, End: 2100}},
		},
		{
			name:  "final window always probed",
			parts: []part{tone(2 * time.Second), silence(700 * ms)},
			detector: &audio.EnergyDetector{
				ThresholdDB: audio.DefaultSilenceThreshold,
				MinSilence:  500 * ms,
				SeekStep:    300 * ms,
			},
			want: []audio.Span{{Start: 0, End: 2100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := buildWaveform(t, rate, tt.parts...)
			got := tt.detector.Segments(w)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnergyDetector_Threshold(t *testing.T) {
	t.Parallel()

	// A quiet tone at about -50 dBFS is silence at -40 dBFS but not at -60 dBFS.
	data := make([]int, 3000)
	for i := range data {
		data[i] = 100
	}
	w, err := audio.NewWaveform(data, 1000, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}

	loose := audio.NewEnergyDetector(500 * time.Millisecond)
	if got := loose.Segments(w); got != nil {
		t.Errorf("Segments() at -40 dBFS = %v, want nil", got)
	}

	strict := audio.NewEnergyDetector(500 * time.Millisecond)
	strict.ThresholdDB = -60
	want := []audio.Span{{Start: 0, End: 3000}}
	if got := strict.Segments(w); !reflect.DeepEqual(got, want) {
		t.Errorf("Segments() at -60 dBFS = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// invertRanges / padRanges - Range arithmetic
// ---------------------------------------------------------------------------

func TestInvertRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		silences []audio.Span
		n        int
		want     []audio.Span
	}{
		{name: "no silence", silences: nil, n: 10, want: []audio.Span{{Start: 0, End: 10}}},
		{name: "all silence", silences: []audio.Span{{Start: 0, End: 10}}, n: 10, want: nil},
		{name: "middle", silences: []audio.Span{{Start: 3, End: 5}}, n: 10, want: []audio.Span{{Start: 0, End: 3}, {Start: 5, End: 10}}},
		{name: "leading", silences: []audio.Span{{Start: 0, End: 4}}, n: 10, want: []audio.Span{{Start: 4, End: 10}}},
		{name: "trailing", silences: []audio.Span{{Start: 6, End: 10}}, n: 10, want: []audio.Span{{Start: 0, End: 6}}},
		{name: "two", silences: []audio.Span{{Start: 2, End: 3}, {Start: 6, End: 8}}, n: 10, want: []audio.Span{{Start: 0, End: 2}, {Start: 3, End: 6}, {Start: 8, End: 10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := audio.InvertRanges(tt.silences, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InvertRanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPadRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ranges []audio.Span
		keep   int
		n      int
		want   []audio.Span
	}{
		{name: "no padding", ranges: []audio.Span{{Start: 2, End: 4}}, keep: 0, n: 10, want: []audio.Span{{Start: 2, End: 4}}},
		{name: "clamped", ranges: []audio.Span{{Start: 1, End: 9}}, keep: 3, n: 10, want: []audio.Span{{Start: 0, End: 10}}},
		{name: "disjoint", ranges: []audio.Span{{Start: 0, End: 20}, {Start: 40, End: 60}}, keep: 5, n: 60, want: []audio.Span{{Start: 0, End: 25}, {Start: 35, End: 60}}},
		{name: "overlap split at midpoint", ranges: []audio.Span{{Start: 0, End: 20}, {Start: 26, End: 60}}, keep: 5, n: 60, want: []audio.Span{{Start: 0, End: 23}, {Start: 23, End: 60}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := audio.PadRanges(tt.ranges, tt.keep, tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PadRanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpan_Len(t *testing.T) {
	t.Parallel()

	if got := (audio.Span{Start: 3, End: 10}).Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
}
