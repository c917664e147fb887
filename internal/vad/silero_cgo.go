//go:build cgo

package vad

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Compile-time interface compliance check.
var _ Detector = (*SileroDetector)(nil)

// SileroDetector runs the Silero ONNX model on each clip.
// It is not safe for concurrent use; calls are serialized.
type SileroDetector struct {
	mu         sync.Mutex
	detector   *speech.Detector
	sampleRate int
}

// NewSileroDetector loads the model described by cfg.
// Call Close to release the ONNX runtime session.
func NewSileroDetector(cfg SileroConfig) (*SileroDetector, error) {
	if !validSileroRate(cfg.SampleRate) {
		return nil, fmt.Errorf("%w: silero needs 8000 or 16000 Hz, got %d", ErrUnsupportedRate, cfg.SampleRate)
	}

	d, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            cfg.ModelPath,
		SampleRate:           cfg.SampleRate,
		Threshold:            cfg.Threshold,
		MinSilenceDurationMs: int(cfg.MinSilence.Milliseconds()),
		SpeechPadMs:          int(cfg.SpeechPad.Milliseconds()),
		LogLevel:             speech.LogLevelError,
	})
	if err != nil {
		return nil, fmt.Errorf("create silero vad: %w", err)
	}
	return &SileroDetector{detector: d, sampleRate: cfg.SampleRate}, nil
}

// Detect returns the speech segments of c. The model state is reset first
// so no context leaks between clips. A segment still open at the end of the
// clip is closed at the last sample.
func (s *SileroDetector) Detect(ctx context.Context, c audio.Clip) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rate := c.Waveform.SampleRate(); rate != s.sampleRate {
		return nil, fmt.Errorf("%w: detector runs at %d Hz, clip is %d Hz", ErrUnsupportedRate, s.sampleRate, rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.detector.Reset(); err != nil {
		return nil, fmt.Errorf("reset silero vad: %w", err)
	}

	samples := c.Waveform.Float32()
	found, err := s.detector.Detect(samples)
	if err != nil {
		return nil, fmt.Errorf("silero detect: %w", err)
	}

	starts := make([]float64, len(found))
	ends := make([]float64, len(found))
	for i, f := range found {
		starts[i], ends[i] = f.SpeechStartAt, f.SpeechEndAt
	}
	return toSegments(starts, ends, s.sampleRate, len(samples)), nil
}

// Close releases the model.
func (s *SileroDetector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Destroy()
}
