package toolchain

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// installDirName is the per-user directory searched for bundled binaries.
const installDirName = ".go-voicecorpus"

// Tool describes an external binary the pipeline shells out to.
type Tool struct {
	Name   string // Binary base name, without extension.
	EnvVar string // Environment variable holding an explicit path.
	hints  map[string]string
}

// FFmpeg transcodes the acquired audio to the canonical WAV layout.
var FFmpeg = Tool{
	Name:   "ffmpeg",
	EnvVar: "FFMPEG_PATH",
	hints: map[string]string{
		"darwin": "brew install ffmpeg",
		"linux": `Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg`,
		"windows": "winget install ffmpeg",
	},
}

// YtDlp downloads the best available audio stream of a remote media URL.
var YtDlp = Tool{
	Name:   "yt-dlp",
	EnvVar: "YTDLP_PATH",
	hints: map[string]string{
		"darwin":  "brew install yt-dlp",
		"linux":   "python3 -m pip install -U yt-dlp",
		"windows": "winget install yt-dlp",
	},
}

// Resolver locates external tools.
type Resolver struct {
	stat fileStatter
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.stat = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform sets the target OS (for testing cross-platform behavior).
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds a tool using the following precedence:
//  1. The tool's environment variable (error if set but invalid)
//  2. ~/.go-voicecorpus/bin/<name>
//  3. System PATH
func (r *Resolver) Resolve(t Tool) (string, error) {
	if envPath := r.env.Getenv(t.EnvVar); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, t.EnvVar, envPath)
		}
		return envPath, nil
	}

	if path, ok := r.installed(t); ok {
		return path, nil
	}

	if path, err := r.env.LookPath(t.Name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s\n\n%s", ErrNotFound, t.Name, r.installInstructions(t))
}

// installed reports the bundled binary path when it exists.
func (r *Resolver) installed(t Tool) (string, bool) {
	home, err := r.env.UserHomeDir()
	if err != nil {
		return "", false
	}

	name := t.Name
	if r.goos == "windows" {
		name += ".exe"
	}
	path := filepath.Join(home, installDirName, "bin", name)
	if _, err := r.stat.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// installInstructions returns platform-specific instructions for t.
func (r *Resolver) installInstructions(t Tool) string {
	hint, ok := t.hints[r.goos]
	if !ok {
		return fmt.Sprintf("Install %s and make sure it is on your PATH,\nor set %s to the binary.", t.Name, t.EnvVar)
	}
	return fmt.Sprintf("To install %s manually:\n  %s\n\nOr set %s environment variable to your %s binary.",
		t.Name, hint, t.EnvVar, t.Name)
}
