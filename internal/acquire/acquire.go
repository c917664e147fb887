// Package acquire turns a media URL or a local audio file into a WAV file
// with the layout the splitter and the inference backends expect.
package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-voicecorpus/internal/toolchain"
)

// Canonical audio layout: mono 16 kHz 16-bit PCM, the rate Silero and
// pyannote are trained on.
const (
	CanonicalName       = "downloaded_audio.wav"
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1

	// downloadTemplate is the yt-dlp output template; yt-dlp fills in the extension.
	downloadTemplate = "download.%(ext)s"
	downloadName     = "download.wav"

	workDirPerm = 0o750
)

// Compile-time interface checks.
var (
	_ Acquirer      = (*MediaAcquirer)(nil)
	_ commandRunner = (*toolchain.Executor)(nil)
)

// Acquirer produces the canonical WAV for a source and returns its path.
type Acquirer interface {
	Acquire(ctx context.Context, source string) (string, error)
}

// MediaAcquirer downloads remote sources with yt-dlp and transcodes every
// source with ffmpeg into <workDir>/downloaded_audio.wav.
type MediaAcquirer struct {
	ffmpegPath string
	ytdlpPath  string
	workDir    string
	logger     *slog.Logger

	// Injected dependencies for testing.
	runner commandRunner
	fs     fileSystem
}

// Option configures a MediaAcquirer.
type Option func(*MediaAcquirer)

// WithYtDlp sets the yt-dlp binary used for URL sources.
func WithYtDlp(path string) Option {
	return func(a *MediaAcquirer) {
		a.ytdlpPath = path
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *MediaAcquirer) {
		a.logger = l
	}
}

// withCommandRunner sets a custom command runner (for testing).
func withCommandRunner(r commandRunner) Option {
	return func(a *MediaAcquirer) {
		a.runner = r
	}
}

// withFileSystem sets a custom filesystem (for testing).
func withFileSystem(fs fileSystem) Option {
	return func(a *MediaAcquirer) {
		a.fs = fs
	}
}

// NewMediaAcquirer creates an acquirer that writes into workDir.
func NewMediaAcquirer(ffmpegPath, workDir string, opts ...Option) *MediaAcquirer {
	a := &MediaAcquirer{
		ffmpegPath: ffmpegPath,
		workDir:    workDir,
		logger:     slog.New(slog.DiscardHandler),
		runner:     toolchain.NewExecutor(),
		fs:         osFileSystem{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OutputPath returns the fixed path of the canonical WAV.
func (a *MediaAcquirer) OutputPath() string {
	return filepath.Join(a.workDir, CanonicalName)
}

// Acquire fetches source when it is an http(s) URL, then transcodes it.
// A previous canonical file at the output path is overwritten.
func (a *MediaAcquirer) Acquire(ctx context.Context, source string) (string, error) {
	if err := a.fs.MkdirAll(a.workDir, workDirPerm); err != nil {
		return "", fmt.Errorf("create work directory %s: %w", a.workDir, err)
	}

	input := source
	if IsRemote(source) {
		downloaded, err := a.download(ctx, source)
		if err != nil {
			return "", err
		}
		defer func() { _ = a.fs.Remove(downloaded) }()
		input = downloaded
	} else if _, err := a.fs.Stat(source); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}

	out := a.OutputPath()
	if err := a.transcode(ctx, input, out); err != nil {
		return "", err
	}
	return out, nil
}

// download runs yt-dlp and returns the path of the extracted WAV.
func (a *MediaAcquirer) download(ctx context.Context, rawURL string) (string, error) {
	if a.ytdlpPath == "" {
		return "", ErrDownloaderMissing
	}

	args := downloadArgs(rawURL, filepath.Join(a.workDir, downloadTemplate), a.ffmpegPath)
	a.logger.Debug("running yt-dlp", "path", a.ytdlpPath, "args", args)

	if _, err := a.runner.Run(ctx, a.ytdlpPath, args); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	path := filepath.Join(a.workDir, downloadName)
	if _, err := a.fs.Stat(path); err != nil {
		return "", fmt.Errorf("%w: yt-dlp did not produce %s", ErrDownloadFailed, path)
	}
	return path, nil
}

// transcode converts input to the canonical layout at out.
func (a *MediaAcquirer) transcode(ctx context.Context, input, out string) error {
	args := transcodeArgs(input, out)
	a.logger.Debug("running ffmpeg", "path", a.ffmpegPath, "args", args)

	if _, err := a.runner.Run(ctx, a.ffmpegPath, args); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		_ = a.fs.Remove(out)
		return fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}
	return nil
}

// downloadArgs builds yt-dlp arguments that fetch the best audio stream and
// extract it as WAV through the given ffmpeg.
func downloadArgs(rawURL, outputTemplate, ffmpegPath string) []string {
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "wav",
		"--no-playlist",
		"--no-progress",
		"--output", outputTemplate,
	}
	if ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", ffmpegPath)
	}
	return append(args, "--", rawURL)
}

// transcodeArgs builds ffmpeg arguments for the canonical WAV layout.
func transcodeArgs(input, out string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-vn",
		"-ac", strconv.Itoa(CanonicalChannels),
		"-ar", strconv.Itoa(CanonicalSampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		out,
	}
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

