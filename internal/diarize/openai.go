package diarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// OpenAI diarization identifiers. go-openai has no constants for these yet,
// and its AudioRequest cannot carry chunking_strategy, so requests are built by hand.
const (
	ModelGPT4oTranscribeDiarize = "gpt-4o-transcribe-diarize"
	formatDiarizedJSON          = "diarized_json"
	chunkingStrategyAuto        = "auto"

	// DefaultOpenAIURL is the OpenAI API base URL.
	DefaultOpenAIURL = "https://api.openai.com/v1"
)

// Compile-time interface compliance check.
var _ Diarizer = (*OpenAIDiarizer)(nil)

// OpenAIDiarizer uses OpenAI's diarizing transcription model and keeps only
// the speaker labels of the returned segments.
type OpenAIDiarizer struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	files      fileOpener
}

// OpenAIOption configures an OpenAIDiarizer.
type OpenAIOption func(*OpenAIDiarizer)

// WithOpenAIBaseURL overrides the API base URL (proxies, tests).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *OpenAIDiarizer) {
		o.baseURL = strings.TrimRight(url, "/")
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client (for testing).
func WithOpenAIHTTPClient(c httpDoer) OpenAIOption {
	return func(o *OpenAIDiarizer) {
		o.httpClient = c
	}
}

// NewOpenAIDiarizer creates a diarizer authenticated with apiKey.
func NewOpenAIDiarizer(apiKey string, opts ...OpenAIOption) (*OpenAIDiarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrTokenMissing)
	}

	o := &OpenAIDiarizer{
		baseURL:    DefaultOpenAIURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		files:      osFileOpener{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Diarize transcribes the file at path with speaker labels and returns the turns.
func (o *OpenAIDiarizer) Diarize(ctx context.Context, path string) (Result, error) {
	body, contentType, err := uploadForm(o.files, path, [][2]string{
		{"model", ModelGPT4oTranscribeDiarize},
		{"response_format", formatDiarizedJSON},
		// Required by the diarization model.
		{"chunking_strategy", chunkingStrategyAuto},
	})
	if err != nil {
		return Result{}, err
	}

	respBody, err := postForm(ctx, o.httpClient, o.baseURL+"/audio/transcriptions", o.apiKey, body, contentType)
	if err != nil {
		return Result{}, err
	}
	return parseSegments(respBody)
}
