package vad

import "errors"

// ErrSileroUnavailable indicates the binary was built without cgo, so the
// ONNX runtime behind the Silero model cannot be loaded.
var ErrSileroUnavailable = errors.New("silero vad unavailable: build with CGO_ENABLED=1 and onnxruntime")

// ErrUnsupportedRate indicates a clip sample rate the detector cannot handle.
var ErrUnsupportedRate = errors.New("unsupported sample rate")

// ErrClipNotExported indicates a detector needs the clip file but it has no path.
var ErrClipNotExported = errors.New("clip not exported")

// ErrAPIKeyMissing indicates OPENAI_API_KEY is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrDetectionFailed wraps any detector failure surfaced by Estimate.
var ErrDetectionFailed = errors.New("voice activity detection failed")
