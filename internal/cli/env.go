package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alnah/go-voicecorpus/internal/acquire"
	"github.com/alnah/go-voicecorpus/internal/config"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/toolchain"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// Environment variables holding credentials.
const (
	EnvHFToken      = "HF_TOKEN"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
	Logger   *slog.Logger
	LogLevel *slog.LevelVar

	// Factories for domain objects
	ToolResolver    ToolResolver
	ConfigLoader    ConfigLoader
	AcquirerFactory AcquirerFactory
	DiarizerFactory DiarizerFactory
	DetectorFactory DetectorFactory
}

// ToolResolver locates external binaries.
type ToolResolver interface {
	Resolve(t toolchain.Tool) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// AcquirerFactory creates the stage that fetches and transcodes the source.
// ytdlpPath is empty for local sources.
type AcquirerFactory interface {
	NewAcquirer(ffmpegPath, ytdlpPath, workDir string, logger *slog.Logger) acquire.Acquirer
}

// DiarizerFactory creates speaker diarization backends.
// baseURL and model only apply to the pyannote backend.
type DiarizerFactory interface {
	NewDiarizer(backend, baseURL, model, token string) (diarize.Diarizer, error)
}

// DetectorFactory creates voice activity detection backends.
// Detectors that hold resources also implement io.Closer.
type DetectorFactory interface {
	NewDetector(backend, modelPath, apiKey string) (vad.Detector, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithToolResolver sets the tool resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) {
		e.ToolResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithAcquirerFactory sets the acquirer factory.
func WithAcquirerFactory(f AcquirerFactory) EnvOption {
	return func(e *Env) {
		e.AcquirerFactory = f
	}
}

// WithDiarizerFactory sets the diarizer factory.
func WithDiarizerFactory(f DiarizerFactory) EnvOption {
	return func(e *Env) {
		e.DiarizerFactory = f
	}
}

// WithDetectorFactory sets the detector factory.
func WithDetectorFactory(f DetectorFactory) EnvOption {
	return func(e *Env) {
		e.DetectorFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
// Debug logs go to stderr once LogLevel is lowered to slog.LevelDebug.
func DefaultEnv() *Env {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		Logger:          slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		LogLevel:        level,
		ToolResolver:    &defaultToolResolver{resolver: toolchain.NewResolver()},
		ConfigLoader:    &defaultConfigLoader{},
		AcquirerFactory: &defaultAcquirerFactory{},
		DiarizerFactory: &defaultDiarizerFactory{},
		DetectorFactory: &defaultDetectorFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultToolResolver implements ToolResolver using the toolchain package.
type defaultToolResolver struct {
	resolver *toolchain.Resolver
}

func (r *defaultToolResolver) Resolve(t toolchain.Tool) (string, error) {
	return r.resolver.Resolve(t)
}

func (r *defaultToolResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	toolchain.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultAcquirerFactory implements AcquirerFactory with yt-dlp and ffmpeg.
type defaultAcquirerFactory struct{}

func (defaultAcquirerFactory) NewAcquirer(ffmpegPath, ytdlpPath, workDir string, logger *slog.Logger) acquire.Acquirer {
	return acquire.NewMediaAcquirer(ffmpegPath, workDir,
		acquire.WithYtDlp(ytdlpPath),
		acquire.WithLogger(logger))
}

// defaultDiarizerFactory implements DiarizerFactory with the HTTP backends.
type defaultDiarizerFactory struct{}

func (defaultDiarizerFactory) NewDiarizer(backend, baseURL, model, token string) (diarize.Diarizer, error) {
	switch backend {
	case config.DiarizerPyannote:
		d, err := diarize.NewPyannoteDiarizer(baseURL, token, diarize.WithPyannoteModel(model))
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DiarizerOpenAI:
		d, err := diarize.NewOpenAIDiarizer(token)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: diarizer %q", ErrUnsupportedBackend, backend)
	}
}

// defaultDetectorFactory implements DetectorFactory with the vad backends.
type defaultDetectorFactory struct{}

func (defaultDetectorFactory) NewDetector(backend, modelPath, apiKey string) (vad.Detector, error) {
	switch backend {
	case config.VADSilero:
		d, err := vad.NewSileroDetector(vad.DefaultSileroConfig(modelPath))
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.VADEnergy:
		return vad.NewEnergyDetector(), nil
	case config.VADOpenAI:
		d, err := vad.NewOpenAIDetectorFromKey(apiKey)
		if err != nil {
			return nil, fmt.Errorf("%w (set it with: export %s=sk-...)", err, EnvOpenAIAPIKey)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: vad %q", ErrUnsupportedBackend, backend)
	}
}

// Compile-time interface verification.
var (
	_ ToolResolver    = (*defaultToolResolver)(nil)
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ AcquirerFactory = (*defaultAcquirerFactory)(nil)
	_ DiarizerFactory = (*defaultDiarizerFactory)(nil)
	_ DetectorFactory = (*defaultDetectorFactory)(nil)
)
