package vad

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-voicecorpus/internal/apierr"
	"github.com/alnah/go-voicecorpus/internal/audio"
)

// DefaultNoSpeechThreshold drops Whisper segments that are more likely
// silence or noise than speech.
const DefaultNoSpeechThreshold = 0.6

// audioTranscriber is the slice of the go-openai client used here.
// *openai.Client implements this implicitly.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Detector         = (*OpenAIDetector)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAIDetector treats the timed segments of a Whisper transcription as
// speech regions. Needs the clip to be exported.
type OpenAIDetector struct {
	client            audioTranscriber
	noSpeechThreshold float64
}

// OpenAIOption configures an OpenAIDetector.
type OpenAIOption func(*OpenAIDetector)

// WithNoSpeechThreshold sets the no-speech probability above which a segment is ignored.
func WithNoSpeechThreshold(p float64) OpenAIOption {
	return func(d *OpenAIDetector) {
		d.noSpeechThreshold = p
	}
}

// withTranscriber sets a custom transcription client (for testing).
func withTranscriber(c audioTranscriber) OpenAIOption {
	return func(d *OpenAIDetector) {
		d.client = c
	}
}

// NewOpenAIDetector creates a detector backed by client.
func NewOpenAIDetector(client *openai.Client, opts ...OpenAIOption) *OpenAIDetector {
	d := &OpenAIDetector{
		client:            client,
		noSpeechThreshold: DefaultNoSpeechThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewOpenAIDetectorFromKey creates a detector with a default client for apiKey.
func NewOpenAIDetectorFromKey(apiKey string, opts ...OpenAIOption) (*OpenAIDetector, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return NewOpenAIDetector(openai.NewClient(apiKey), opts...), nil
}

// Detect transcribes c and returns its speech segments.
func (d *OpenAIDetector) Detect(ctx context.Context, c audio.Clip) ([]Segment, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("%w: %s", ErrClipNotExported, c)
	}

	resp, err := d.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: c.Path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, apierr.FromOpenAI(err)
	}

	rate := c.Waveform.SampleRate()
	n := c.Waveform.Frames()
	var out []Segment
	for _, s := range resp.Segments {
		if s.NoSpeechProb > d.noSpeechThreshold {
			continue
		}
		out = append(out, Segment{
			Start: min(secondsToSamples(s.Start, rate), n),
			End:   min(secondsToSamples(s.End, rate), n),
		})
	}
	return out, nil
}
