package audio_test

// Notes:
// - WAV round trips go through real files in t.TempDir(): the go-audio encoder
//   needs an io.WriteSeeker to patch RIFF sizes after writing samples.
// - 8-bit PCM is rejected on purpose; only 16/24/32-bit layouts are tested.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// ---------------------------------------------------------------------------
// NewWaveform - Format validation
// ---------------------------------------------------------------------------

func TestNewWaveform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       []int
		sampleRate int
		channels   int
		bitDepth   int
		wantErr    error
	}{
		{name: "mono 16-bit", data: []int{1, 2, 3}, sampleRate: 16000, channels: 1, bitDepth: 16},
		{name: "stereo 24-bit", data: []int{1, 2, 3, 4}, sampleRate: 44100, channels: 2, bitDepth: 24},
		{name: "empty data", data: nil, sampleRate: 16000, channels: 1, bitDepth: 32},
		{name: "zero sample rate", data: []int{1}, sampleRate: 0, channels: 1, bitDepth: 16, wantErr: audio.ErrUnsupportedFormat},
		{name: "zero channels", data: []int{1}, sampleRate: 16000, channels: 0, bitDepth: 16, wantErr: audio.ErrUnsupportedFormat},
		{name: "8-bit rejected", data: []int{1}, sampleRate: 16000, channels: 1, bitDepth: 8, wantErr: audio.ErrUnsupportedFormat},
		{name: "partial frame", data: []int{1, 2, 3}, sampleRate: 16000, channels: 2, bitDepth: 16, wantErr: audio.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := audio.NewWaveform(tt.data, tt.sampleRate, tt.channels, tt.bitDepth)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewWaveform() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewWaveform() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewWaveform_CopiesData(t *testing.T) {
	t.Parallel()

	data := []int{1, 2, 3, 4}
	w, err := audio.NewWaveform(data, 1000, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}
	data[0] = 99

	got := w.Slice(0, 1).Float32()[0]
	want := float32(1) / 32768
	if got != want {
		t.Errorf("first sample after caller mutation = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Waveform durations and frame conversion
// ---------------------------------------------------------------------------

func TestWaveform_Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		frames     int
		sampleRate int
		channels   int
		want       time.Duration
	}{
		{name: "empty", frames: 0, sampleRate: 16000, channels: 1, want: 0},
		{name: "one second mono", frames: 16000, sampleRate: 16000, channels: 1, want: time.Second},
		{name: "half second stereo", frames: 8000, sampleRate: 16000, channels: 2, want: 500 * time.Millisecond},
		{name: "odd rate", frames: 44100 * 3, sampleRate: 44100, channels: 1, want: 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, err := audio.NewWaveform(make([]int, tt.frames*tt.channels), tt.sampleRate, tt.channels, 16)
			if err != nil {
				t.Fatalf("NewWaveform() unexpected error: %v", err)
			}
			if got := w.Frames(); got != tt.frames {
				t.Errorf("Frames() = %d, want %d", got, tt.frames)
			}
			if got := w.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
			if got := w.IsEmpty(); got != (tt.frames == 0) {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.frames == 0)
			}
		})
	}
}

func TestWaveform_FramesFor(t *testing.T) {
	t.Parallel()

	w := buildWaveform(t, 16000)

	tests := []struct {
		name string
		d    time.Duration
		want int
	}{
		{name: "negative", d: -time.Second, want: 0},
		{name: "zero", d: 0, want: 0},
		{name: "one millisecond", d: time.Millisecond, want: 16},
		{name: "rounds down", d: 100 * time.Microsecond, want: 1},
		{name: "six seconds", d: 6 * time.Second, want: 96000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := w.FramesFor(tt.d); got != tt.want {
				t.Errorf("FramesFor(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Waveform.Slice - Clamping and immutability
// ---------------------------------------------------------------------------

func TestWaveform_Slice(t *testing.T) {
	t.Parallel()

	w, err := audio.NewWaveform([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 10, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		start, end int
		wantFrames int
	}{
		{name: "middle", start: 2, end: 5, wantFrames: 3},
		{name: "whole", start: 0, end: 10, wantFrames: 10},
		{name: "end past length", start: 8, end: 50, wantFrames: 2},
		{name: "negative start", start: -5, end: 3, wantFrames: 3},
		{name: "inverted", start: 6, end: 2, wantFrames: 0},
		{name: "start past length", start: 20, end: 30, wantFrames: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := w.Slice(tt.start, tt.end)
			if got.Frames() != tt.wantFrames {
				t.Errorf("Slice(%d, %d).Frames() = %d, want %d", tt.start, tt.end, got.Frames(), tt.wantFrames)
			}
			if got.SampleRate() != w.SampleRate() || got.BitDepth() != w.BitDepth() || got.Channels() != w.Channels() {
				t.Error("Slice() did not keep the source format")
			}
		})
	}
}

func TestWaveform_Slice_DoesNotWriteSource(t *testing.T) {
	t.Parallel()

	w, err := audio.NewWaveform([]int{10, 20, 30, 40}, 4, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}
	before := w.Float32()

	_ = w.Slice(0, 2)
	_ = w.SliceTime(250*time.Millisecond, 750*time.Millisecond)

	after := w.Float32()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("source sample %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Waveform.Float32 - Mono mixdown
// ---------------------------------------------------------------------------

func TestWaveform_Float32(t *testing.T) {
	t.Parallel()

	w, err := audio.NewWaveform([]int{16384, 16384, -32768, 0, 32767, 32767}, 8000, 2, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}

	got := w.Float32()
	want := []float32{0.5, -0.5, 32767.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("Float32() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Float32()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// WAV encode/decode
// ---------------------------------------------------------------------------

func TestWAV_RoundTrip(t *testing.T) {
	t.Parallel()

	src := buildWaveform(t, 16000, tone(250*time.Millisecond), silence(250*time.Millisecond))
	path := filepath.Join(t.TempDir(), "roundtrip.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create() unexpected error: %v", err)
	}
	if err := audio.EncodeWAV(f, src); err != nil {
		t.Fatalf("EncodeWAV() unexpected error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	got, err := audio.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() unexpected error: %v", err)
	}
	if got.SampleRate() != 16000 || got.Channels() != 1 || got.BitDepth() != 16 {
		t.Errorf("ReadWAV() format = %d Hz/%d ch/%d bit, want 16000/1/16",
			got.SampleRate(), got.Channels(), got.BitDepth())
	}
	if got.Frames() != src.Frames() {
		t.Fatalf("ReadWAV() frames = %d, want %d", got.Frames(), src.Frames())
	}

	gotSamples, wantSamples := got.Float32(), src.Float32()
	for i := range wantSamples {
		if gotSamples[i] != wantSamples[i] {
			t.Fatalf("sample %d = %v, want %v", i, gotSamples[i], wantSamples[i])
		}
	}
}

func TestDecodeWAV_Invalid(t *testing.T) {
	t.Parallel()

	_, err := audio.DecodeWAV(bytes.NewReader([]byte("definitely not a riff file")))
	if !errors.Is(err, audio.ErrInvalidWAV) {
		t.Errorf("DecodeWAV() error = %v, want %v", err, audio.ErrInvalidWAV)
	}
}

func TestReadWAV_Missing(t *testing.T) {
	t.Parallel()

	_, err := audio.ReadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, audio.ErrFileNotFound) {
		t.Errorf("ReadWAV() error = %v, want %v", err, audio.ErrFileNotFound)
	}
}
