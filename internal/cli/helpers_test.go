package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	toolResolver *mockToolResolver
	configLoader *mockConfigLoader
	acquirer     *mockAcquirerFactory
	diarizer     *mockDiarizerFactory
	detector     *mockDetectorFactory
	stdout       *syncBuffer
	stderr       *syncBuffer
}

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	getenv func(string) string
	mocks  *testMocks
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

// withTestGetenv overrides the environment lookup.
func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) {
		o.getenv = fn
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		getenv: defaultTestEnv,
		mocks: &testMocks{
			toolResolver: &mockToolResolver{},
			configLoader: &mockConfigLoader{},
			acquirer:     &mockAcquirerFactory{},
			diarizer:     &mockDiarizerFactory{},
			detector:     &mockDetectorFactory{},
			stdout:       &syncBuffer{},
			stderr:       &syncBuffer{},
		},
	}
	for _, opt := range opts {
		opt(options)
	}

	m := options.mocks
	env := &Env{
		Stdout:          m.stdout,
		Stderr:          m.stderr,
		Getenv:          options.getenv,
		Logger:          slog.New(slog.DiscardHandler),
		LogLevel:        new(slog.LevelVar),
		ToolResolver:    m.toolResolver,
		ConfigLoader:    m.configLoader,
		AcquirerFactory: m.acquirer,
		DiarizerFactory: m.diarizer,
		DetectorFactory: m.detector,
	}
	return env, m
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns credentials for both diarization backends.
func defaultTestEnv(key string) string {
	switch key {
	case EnvHFToken:
		return "hf_test_token"
	case EnvOpenAIAPIKey:
		return "sk-test-key"
	default:
		return ""
	}
}

// writeTestWAV writes a mono 16 kHz WAV of square-wave speech and silence.
// Positive durations are speech, negative ones silence.
func writeTestWAV(t *testing.T, parts ...time.Duration) string {
	t.Helper()
	const rate = 16000

	var data []int
	for _, p := range parts {
		loud := p > 0
		if !loud {
			p = -p
		}
		for i := range int(p.Seconds() * rate) {
			v := 0
			if loud {
				v = 10000
				if i%2 == 1 {
					v = -10000
				}
			}
			data = append(data, v)
		}
	}
	w, err := audio.NewWaveform(data, rate, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "downloaded_audio.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create wav: %v", err)
	}
	if err := audio.EncodeWAV(f, w); err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close wav: %v", err)
	}
	return path
}

// acquireFile returns an AcquireFunc that always hands back path.
func acquireFile(path string) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) {
		return path, nil
	}
}
