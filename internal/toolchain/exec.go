package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runFn is the function type for running a command and capturing its output.
type runFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs external tools with injectable dependencies.
type Executor struct {
	run runFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunFunc sets a custom run function (for testing).
func WithRunFunc(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		run: defaultRun,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the binary at path and returns its combined output.
// A non-zero exit is reported as ErrCommandFailed with the tail of the output.
func (e *Executor) Run(ctx context.Context, path string, args []string) (string, error) {
	output, err := e.run(ctx, path, args)
	if err != nil {
		if ctx.Err() != nil {
			return output, ctx.Err()
		}
		return output, fmt.Errorf("%w: %s: %v\nOutput: %s", ErrCommandFailed, path, err, tail(output, outputTailLines))
	}
	return output, nil
}

// outputTailLines bounds how much tool output is carried in errors.
const outputTailLines = 10

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// defaultRun is the production implementation.
// ffmpeg writes diagnostics to stderr and yt-dlp to stdout, so both are kept.
func defaultRun(ctx context.Context, path string, args []string) (string, error) {
	// #nosec G204 -- path comes from the resolver, args are built by the caller
	cmd := exec.CommandContext(ctx, path, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}
