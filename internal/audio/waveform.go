package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the RIFF audio format tag for integer PCM.
const wavFormatPCM = 1

// Waveform is an immutable block of interleaved integer PCM samples.
// Slicing returns a new Waveform that shares storage with its source
// but never writes to it.
type Waveform struct {
	data       []int
	sampleRate int
	channels   int
	bitDepth   int
}

// NewWaveform creates a Waveform from interleaved samples.
// The samples are copied so later changes to data do not affect the Waveform.
func NewWaveform(data []int, sampleRate, channels, bitDepth int) (Waveform, error) {
	if err := validateFormat(sampleRate, channels, bitDepth); err != nil {
		return Waveform{}, err
	}
	if len(data)%channels != 0 {
		return Waveform{}, fmt.Errorf("%w: %d samples is not a multiple of %d channels",
			ErrUnsupportedFormat, len(data), channels)
	}

	return Waveform{
		data:       append([]int(nil), data...),
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
	}, nil
}

// validateFormat rejects layouts the splitter and encoders cannot handle.
func validateFormat(sampleRate, channels, bitDepth int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	switch bitDepth {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}
}

// SampleRate returns the number of frames per second.
func (w Waveform) SampleRate() int { return w.sampleRate }

// Channels returns the number of interleaved channels.
func (w Waveform) Channels() int { return w.channels }

// BitDepth returns the bits per sample.
func (w Waveform) BitDepth() int { return w.bitDepth }

// Frames returns the number of sample frames (one sample per channel).
func (w Waveform) Frames() int {
	if w.channels == 0 {
		return 0
	}
	return len(w.data) / w.channels
}

// IsEmpty reports whether the waveform holds no frames.
func (w Waveform) IsEmpty() bool {
	return w.Frames() == 0
}

// Duration returns the wall-clock length of the waveform.
func (w Waveform) Duration() time.Duration {
	return w.FramesDuration(w.Frames())
}

// FramesDuration converts a frame count to a duration at this sample rate.
func (w Waveform) FramesDuration(frames int) time.Duration {
	if w.sampleRate == 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(w.sampleRate))
}

// FramesFor converts a duration to a frame count at this sample rate, rounding down.
func (w Waveform) FramesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(int64(d) * int64(w.sampleRate) / int64(time.Second))
}

// Slice returns frames [start, end). Bounds are clamped to the waveform.
func (w Waveform) Slice(start, end int) Waveform {
	n := w.Frames()
	start = max(0, min(start, n))
	end = max(start, min(end, n))

	lo, hi := start*w.channels, end*w.channels
	return Waveform{
		data:       w.data[lo:hi:hi],
		sampleRate: w.sampleRate,
		channels:   w.channels,
		bitDepth:   w.bitDepth,
	}
}

// SliceTime returns the frames between two offsets from the start.
func (w Waveform) SliceTime(from, to time.Duration) Waveform {
	return w.Slice(w.FramesFor(from), w.FramesFor(to))
}

// MaxAmplitude returns the largest absolute sample value for the bit depth.
func (w Waveform) MaxAmplitude() float64 {
	return float64(int64(1) << (w.bitDepth - 1))
}

// Float32 returns a mono mixdown normalized to [-1, 1].
func (w Waveform) Float32() []float32 {
	n := w.Frames()
	out := make([]float32, n)
	if n == 0 {
		return out
	}

	scale := w.MaxAmplitude() * float64(w.channels)
	for f := range n {
		var sum int64
		for c := range w.channels {
			sum += int64(w.data[f*w.channels+c])
		}
		out[f] = float32(math.Max(-1, math.Min(1, float64(sum)/scale)))
	}
	return out
}

// intBuffer wraps the samples for the go-audio encoder.
func (w Waveform) intBuffer() *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: w.channels,
			SampleRate:  w.sampleRate,
		},
		Data:           w.data,
		SourceBitDepth: w.bitDepth,
	}
}

// DecodeWAV reads a PCM WAV stream into a Waveform.
func DecodeWAV(r io.ReadSeeker) (Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Waveform{}, ErrInvalidWAV
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return Waveform{}, fmt.Errorf("%w: audio format tag %d (want PCM)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Waveform{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}

	w := Waveform{
		data:       buf.Data,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}
	if err := validateFormat(w.sampleRate, w.channels, w.bitDepth); err != nil {
		return Waveform{}, err
	}
	// Drop a trailing partial frame rather than failing on it.
	w.data = w.data[:w.Frames()*w.channels]
	return w, nil
}

// ReadWAV decodes the WAV file at path.
func ReadWAV(path string) (Waveform, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the acquisition step
	if err != nil {
		return Waveform{}, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	w, err := DecodeWAV(f)
	if err != nil {
		return Waveform{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return w, nil
}

// EncodeWAV writes w as a PCM WAV stream.
func EncodeWAV(ws io.WriteSeeker, w Waveform) error {
	enc := wav.NewEncoder(ws, w.sampleRate, w.bitDepth, w.channels, wavFormatPCM)
	if err := enc.Write(w.intBuffer()); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
