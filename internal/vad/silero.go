package vad

import "time"

// DefaultSileroModel is the model file looked up when none is configured.
const DefaultSileroModel = "silero_vad.onnx"

// SileroConfig configures the Silero detector.
type SileroConfig struct {
	ModelPath  string
	SampleRate int     // 8000 or 16000.
	Threshold  float32 // Speech probability threshold.
	MinSilence time.Duration
	SpeechPad  time.Duration
}

// DefaultSileroConfig returns the settings used by the reference Silero
// speech-timestamp helper at 16 kHz.
func DefaultSileroConfig(modelPath string) SileroConfig {
	return SileroConfig{
		ModelPath:  modelPath,
		SampleRate: 16000,
		Threshold:  0.5,
		MinSilence: 100 * time.Millisecond,
		SpeechPad:  30 * time.Millisecond,
	}
}

// validSileroRate reports whether the Silero model accepts sampleRate.
func validSileroRate(sampleRate int) bool {
	return sampleRate == 8000 || sampleRate == 16000
}

// toSegments converts Silero timestamps in seconds to sample ranges within a
// clip of n samples. An end of zero marks speech still running at the end of
// the clip and is closed at n. Offsets past the clip are clamped to n.
func toSegments(starts, ends []float64, sampleRate, n int) []Segment {
	out := make([]Segment, 0, len(starts))
	for i, start := range starts {
		seg := Segment{
			Start: min(secondsToSamples(start, sampleRate), n),
			End:   n,
		}
		if i < len(ends) && ends[i] > 0 {
			seg.End = min(secondsToSamples(ends[i], sampleRate), n)
		}
		out = append(out, seg)
	}
	return out
}

// secondsToSamples converts a Silero timestamp to a sample offset.
func secondsToSamples(sec float64, sampleRate int) int {
	return int(sec * float64(sampleRate))
}
