package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-voicecorpus/internal/acquire"
	"github.com/alnah/go-voicecorpus/internal/apierr"
	"github.com/alnah/go-voicecorpus/internal/audio"
	"github.com/alnah/go-voicecorpus/internal/cli"
	"github.com/alnah/go-voicecorpus/internal/config"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/interrupt"
	"github.com/alnah/go-voicecorpus/internal/pipeline"
	"github.com/alnah/go-voicecorpus/internal/toolchain"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitAcquisition = 5
	ExitInference   = 6
	ExitInterrupt   = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the run, a second one exits at once.
	h, ctx := interrupt.NewHandler(context.Background())
	defer h.Stop()

	env := cli.DefaultEnv()
	rootCmd := newRootCmd(env)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		h.Stop()
		os.Exit(exitCode(err))
	}
}

// newRootCmd assembles the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "voicecorpus",
		Short: "Build single-speaker voice clip corpora from videos and recordings",
		Long: `Build single-speaker voice clip corpora from videos and recordings.

A source is downloaded, split at pauses into clips of bounded length, filtered
to clips with exactly one speaker, and measured for speech content.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				env.LogLevel.Set(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")

	rootCmd.AddCommand(cli.RunCmd(env))
	rootCmd.AddCommand(cli.SplitCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): missing tools, credentials or models.
	if errors.Is(err, toolchain.ErrNotFound) || errors.Is(err, acquire.ErrDownloaderMissing) ||
		errors.Is(err, diarize.ErrTokenMissing) || errors.Is(err, vad.ErrAPIKeyMissing) ||
		errors.Is(err, vad.ErrSileroUnavailable) || errors.Is(err, apierr.ErrAuthFailed) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4): bad input or settings.
	if errors.Is(err, cli.ErrInvalidFlag) || errors.Is(err, cli.ErrUnsupportedBackend) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) ||
		errors.Is(err, pipeline.ErrInvalidConfig) || errors.Is(err, audio.ErrInvalidBounds) ||
		errors.Is(err, audio.ErrInvalidWAV) || errors.Is(err, audio.ErrUnsupportedFormat) ||
		errors.Is(err, audio.ErrFileNotFound) || errors.Is(err, acquire.ErrSourceNotFound) ||
		errors.Is(err, vad.ErrUnsupportedRate) {
		return ExitValidation
	}

	// Acquisition errors (ExitAcquisition = 5).
	if errors.Is(err, acquire.ErrDownloadFailed) || errors.Is(err, acquire.ErrTranscodeFailed) ||
		errors.Is(err, toolchain.ErrCommandFailed) {
		return ExitAcquisition
	}

	// Inference errors (ExitInference = 6): diarization and voice activity.
	if errors.Is(err, diarize.ErrDiarizationFailed) || errors.Is(err, diarize.ErrInvalidResponse) ||
		errors.Is(err, vad.ErrDetectionFailed) || errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, apierr.ErrServer) {
		return ExitInference
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
