package cli

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alnah/go-voicecorpus/internal/acquire"
	"github.com/alnah/go-voicecorpus/internal/audio"
	"github.com/alnah/go-voicecorpus/internal/config"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/toolchain"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// ---------------------------------------------------------------------------
// Mock ToolResolver
// ---------------------------------------------------------------------------

type mockToolResolver struct {
	ResolveFunc      func(t toolchain.Tool) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu       sync.Mutex
	resolved []string // Tool names requested
}

func (m *mockToolResolver) Resolve(t toolchain.Tool) (string, error) {
	m.mu.Lock()
	m.resolved = append(m.resolved, t.Name)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(t)
	}
	return "/usr/bin/" + t.Name, nil
}

func (m *mockToolResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockToolResolver) Resolved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolved...)
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock AcquirerFactory + Acquirer
// ---------------------------------------------------------------------------

type acquirerCall struct {
	FFmpegPath string
	YtDlpPath  string
	WorkDir    string
}

type mockAcquirerFactory struct {
	AcquireFunc func(ctx context.Context, source string) (string, error)

	mu    sync.Mutex
	calls []acquirerCall
}

func (m *mockAcquirerFactory) NewAcquirer(ffmpegPath, ytdlpPath, workDir string, _ *slog.Logger) acquire.Acquirer {
	m.mu.Lock()
	m.calls = append(m.calls, acquirerCall{FFmpegPath: ffmpegPath, YtDlpPath: ytdlpPath, WorkDir: workDir})
	m.mu.Unlock()
	return &mockAcquirer{fn: m.AcquireFunc}
}

func (m *mockAcquirerFactory) Calls() []acquirerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]acquirerCall(nil), m.calls...)
}

type mockAcquirer struct {
	fn func(ctx context.Context, source string) (string, error)
}

func (m *mockAcquirer) Acquire(ctx context.Context, source string) (string, error) {
	if m.fn != nil {
		return m.fn(ctx, source)
	}
	return "", acquire.ErrSourceNotFound
}

// ---------------------------------------------------------------------------
// Mock DiarizerFactory + Diarizer
// ---------------------------------------------------------------------------

type diarizerCall struct {
	Backend string
	BaseURL string
	Model   string
	Token   string
}

type mockDiarizerFactory struct {
	NewDiarizerFunc func(backend, baseURL, model, token string) (diarize.Diarizer, error)

	mu    sync.Mutex
	calls []diarizerCall
}

func (m *mockDiarizerFactory) NewDiarizer(backend, baseURL, model, token string) (diarize.Diarizer, error) {
	m.mu.Lock()
	m.calls = append(m.calls, diarizerCall{Backend: backend, BaseURL: baseURL, Model: model, Token: token})
	m.mu.Unlock()

	if m.NewDiarizerFunc != nil {
		return m.NewDiarizerFunc(backend, baseURL, model, token)
	}
	return &mockDiarizer{}, nil
}

func (m *mockDiarizerFactory) Calls() []diarizerCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]diarizerCall(nil), m.calls...)
}

// mockDiarizer reports one speaker per file unless DiarizeFunc says otherwise.
type mockDiarizer struct {
	DiarizeFunc func(ctx context.Context, path string) (diarize.Result, error)
}

func (m *mockDiarizer) Diarize(ctx context.Context, path string) (diarize.Result, error) {
	if m.DiarizeFunc != nil {
		return m.DiarizeFunc(ctx, path)
	}
	return diarize.Result{Tracks: []diarize.Track{{Speaker: "SPEAKER_00"}}}, nil
}

// ---------------------------------------------------------------------------
// Mock DetectorFactory + Detector
// ---------------------------------------------------------------------------

type detectorCall struct {
	Backend   string
	ModelPath string
	APIKey    string
}

type mockDetectorFactory struct {
	NewDetectorFunc func(backend, modelPath, apiKey string) (vad.Detector, error)

	mu       sync.Mutex
	calls    []detectorCall
	detector *mockDetector
}

func (m *mockDetectorFactory) NewDetector(backend, modelPath, apiKey string) (vad.Detector, error) {
	m.mu.Lock()
	m.calls = append(m.calls, detectorCall{Backend: backend, ModelPath: modelPath, APIKey: apiKey})
	if m.detector == nil {
		m.detector = &mockDetector{}
	}
	d := m.detector
	m.mu.Unlock()

	if m.NewDetectorFunc != nil {
		return m.NewDetectorFunc(backend, modelPath, apiKey)
	}
	return d, nil
}

func (m *mockDetectorFactory) Calls() []detectorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]detectorCall(nil), m.calls...)
}

// mockDetector reports the whole clip as speech and records Close.
type mockDetector struct {
	mu     sync.Mutex
	closed bool
}

func (m *mockDetector) Detect(_ context.Context, c audio.Clip) ([]vad.Segment, error) {
	return []vad.Segment{{Start: 0, End: c.Waveform.Frames()}}, nil
}

func (m *mockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
