//go:build !cgo

package vad

import (
	"context"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// Compile-time interface compliance check.
var _ Detector = (*SileroDetector)(nil)

// SileroDetector is unavailable without cgo.
type SileroDetector struct{}

// NewSileroDetector always fails with ErrSileroUnavailable.
func NewSileroDetector(SileroConfig) (*SileroDetector, error) {
	return nil, ErrSileroUnavailable
}

// Detect always fails with ErrSileroUnavailable.
func (*SileroDetector) Detect(context.Context, audio.Clip) ([]Segment, error) {
	return nil, ErrSileroUnavailable
}

// Close is a no-op.
func (*SileroDetector) Close() error { return nil }
