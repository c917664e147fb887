package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultPyannoteModel is the pretrained pipeline requested from the service.
const DefaultPyannoteModel = "pyannote/speaker-diarization-3.1"

// DefaultPyannoteURL is where a local pyannote service listens by default.
const DefaultPyannoteURL = "http://127.0.0.1:8000"

// Compile-time interface compliance check.
var _ Diarizer = (*PyannoteDiarizer)(nil)

// PyannoteDiarizer calls an HTTP service hosting a pyannote pipeline.
// The service receives the clip as a multipart upload on POST /diarize and
// answers {"segments":[{"start":s,"end":s,"speaker":"SPEAKER_00"}]}.
type PyannoteDiarizer struct {
	baseURL    string
	token      string
	model      string
	httpClient httpDoer
	files      fileOpener
}

// PyannoteOption configures a PyannoteDiarizer.
type PyannoteOption func(*PyannoteDiarizer)

// WithPyannoteModel overrides the requested pipeline name.
// An empty name keeps DefaultPyannoteModel.
func WithPyannoteModel(model string) PyannoteOption {
	return func(p *PyannoteDiarizer) {
		if model != "" {
			p.model = model
		}
	}
}

// WithPyannoteHTTPClient sets a custom HTTP client (for testing).
func WithPyannoteHTTPClient(c httpDoer) PyannoteOption {
	return func(p *PyannoteDiarizer) {
		p.httpClient = c
	}
}

// NewPyannoteDiarizer creates a diarizer for the service at baseURL.
// token is the Hugging Face access token forwarded to the service; it is
// required because the pyannote pipelines are gated models.
func NewPyannoteDiarizer(baseURL, token string, opts ...PyannoteOption) (*PyannoteDiarizer, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: set HF_TOKEN to a Hugging Face access token", ErrTokenMissing)
	}
	if baseURL == "" {
		baseURL = DefaultPyannoteURL
	}

	p := &PyannoteDiarizer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		model:      DefaultPyannoteModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		files:      osFileOpener{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Diarize uploads the file at path and returns its speaker turns.
func (p *PyannoteDiarizer) Diarize(ctx context.Context, path string) (Result, error) {
	body, contentType, err := uploadForm(p.files, path, [][2]string{{"model", p.model}})
	if err != nil {
		return Result{}, err
	}

	respBody, err := postForm(ctx, p.httpClient, p.baseURL+"/diarize", p.token, body, contentType)
	if err != nil {
		return Result{}, err
	}
	return parseSegments(respBody)
}

// segmentsResponse is the payload shared by both HTTP backends.
type segmentsResponse struct {
	Segments []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

// parseSegments decodes speaker segments with times in seconds.
func parseSegments(body []byte) (Result, error) {
	var resp segmentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	res := Result{Tracks: make([]Track, 0, len(resp.Segments))}
	for _, s := range resp.Segments {
		res.Tracks = append(res.Tracks, Track{
			Start:   seconds(s.Start),
			End:     seconds(s.End),
			Speaker: s.Speaker,
		})
	}
	return res, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
