package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicecorpus/internal/acquire"
	"github.com/alnah/go-voicecorpus/internal/config"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/pipeline"
	"github.com/alnah/go-voicecorpus/internal/toolchain"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// Flag names. Those shared with the config file use the same key.
const (
	flagNoReport    = "no-report"
	flagMetricsFile = "metrics-file"
)

// runOptions holds the raw flag values of run and split.
type runOptions struct {
	workDir      string
	qualifiedDir string
	filteredDir  string
	prefix       string
	minDuration  time.Duration
	maxDuration  time.Duration
	silenceGap   time.Duration
	silenceDB    float64
	keepSilence  time.Duration

	diarizer      string
	diarizerURL   string
	diarizerModel string
	vad           string
	vadModel      string
	noReport      bool
	metricsFile   string
}

// addSplitFlags registers the flags shared by run and split.
func addSplitFlags(cmd *cobra.Command, o *runOptions) {
	d := pipeline.DefaultConfig("")
	f := cmd.Flags()
	f.StringVar(&o.workDir, config.KeyWorkDir, d.WorkDir, "Directory for the downloaded source audio")
	f.StringVarP(&o.qualifiedDir, config.KeyQualifiedDir, "o", d.QualifiedDir, "Directory for length-qualified clips")
	f.StringVar(&o.prefix, config.KeyPrefix, d.Prefix, "File name prefix of exported clips")
	f.DurationVar(&o.minDuration, config.KeyMinDuration, d.MinDuration, "Shortest clip to keep")
	f.DurationVar(&o.maxDuration, config.KeyMaxDuration, d.MaxDuration, "Longest clip; longer segments are cut")
	f.DurationVar(&o.silenceGap, config.KeySilenceGap, d.SilenceGap, "Minimum pause that separates two segments")
	f.Float64Var(&o.silenceDB, config.KeySilenceThresh, d.SilenceThreshold, "Level in dBFS below which audio is silence")
	f.DurationVar(&o.keepSilence, config.KeyKeepSilence, d.KeepSilence, "Silence kept around each segment")
	f.StringVar(&o.metricsFile, flagMetricsFile, "", "Write run metrics to this file in Prometheus text format")
}

// RunCmd creates the run command.
// The env parameter provides injectable dependencies for testing.
func RunCmd(env *Env) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <url-or-file>",
		Short: "Build a single-speaker clip corpus from a source",
		Long: `Build a corpus of single-speaker clips from a video URL or local audio file.

The source is downloaded with yt-dlp (URLs only) and converted with ffmpeg to
mono 16 kHz WAV. It is split at pauses into clips between --min-duration and
--max-duration, saved to --qualified-dir, filtered to clips with exactly one
speaker, and saved again to --filtered-dir. Finally the speech duration of
every retained clip is printed.

Diarization backends: pyannote (needs HF_TOKEN), openai (needs OPENAI_API_KEY)
VAD backends: silero (needs a cgo build and the ONNX model), energy, openai`,
		Example: `  voicecorpus run "https://www.youtube.com/watch?v=abc123"
  voicecorpus run interview.mp3 --diarizer openai --vad energy
  voicecorpus run talk.wav --min-duration 4s --max-duration 12s --no-report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, env, args[0], opts, true)
		},
	}

	addSplitFlags(cmd, &opts)
	f := cmd.Flags()
	f.StringVar(&opts.filteredDir, config.KeyFilteredDir, pipeline.DefaultFilteredDir, "Directory for single-speaker clips")
	f.StringVar(&opts.diarizer, config.KeyDiarizer, config.DiarizerPyannote, "Diarization backend: pyannote, openai")
	f.StringVar(&opts.diarizerURL, config.KeyDiarizerURL, diarize.DefaultPyannoteURL, "Base URL of the pyannote service")
	f.StringVar(&opts.diarizerModel, config.KeyDiarizerModel, diarize.DefaultPyannoteModel, "Pretrained pipeline requested from the pyannote service")
	f.StringVar(&opts.vad, config.KeyVAD, config.VADSilero, "Voice activity backend: silero, energy, openai")
	f.StringVar(&opts.vadModel, config.KeyVADModel, vad.DefaultSileroModel, "Path to the Silero ONNX model")
	f.BoolVar(&opts.noReport, flagNoReport, false, "Skip the speech duration report")

	return cmd
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "split <url-or-file>",
		Short: "Split a source into length-qualified clips",
		Long: `Download and split a source into clips without speaker filtering.

Clips between --min-duration and --max-duration are saved to --qualified-dir.`,
		Example: `  voicecorpus split "https://www.youtube.com/watch?v=abc123"
  voicecorpus split lecture.m4a -o clips --silence-thresh -35`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, env, args[0], opts, false)
		},
	}

	addSplitFlags(cmd, &opts)
	return cmd
}

// resolveConfig merges flags, the config file and defaults.
// Precedence: explicit flag > config file > environment fallback > flag default.
func resolveConfig(cmd *cobra.Command, cfg config.Config, source string, o runOptions, filter bool) pipeline.Config {
	pick := func(key string) bool {
		return !cmd.Flags().Changed(key) && cfg.IsSet(key)
	}

	if pick(config.KeyWorkDir) {
		o.workDir = cfg.WorkDir
	}
	if pick(config.KeyQualifiedDir) {
		o.qualifiedDir = cfg.QualifiedDir
	}
	if pick(config.KeyFilteredDir) {
		o.filteredDir = cfg.FilteredDir
	}
	if pick(config.KeyPrefix) {
		o.prefix = cfg.Prefix
	}
	if pick(config.KeyMinDuration) {
		o.minDuration = cfg.MinDuration
	}
	if pick(config.KeyMaxDuration) {
		o.maxDuration = cfg.MaxDuration
	}
	if pick(config.KeySilenceGap) {
		o.silenceGap = cfg.SilenceGap
	}
	if pick(config.KeySilenceThresh) {
		o.silenceDB = cfg.SilenceThreshold
	}
	if pick(config.KeyKeepSilence) {
		o.keepSilence = cfg.KeepSilence
	}

	return pipeline.Config{
		Source:           source,
		WorkDir:          config.ExpandPath(o.workDir),
		QualifiedDir:     config.ExpandPath(o.qualifiedDir),
		FilteredDir:      config.ExpandPath(o.filteredDir),
		Prefix:           o.prefix,
		MinDuration:      o.minDuration,
		MaxDuration:      o.maxDuration,
		SilenceGap:       o.silenceGap,
		SilenceThreshold: o.silenceDB,
		KeepSilence:      o.keepSilence,
		Filter:           filter,
		Report:           filter && !o.noReport,
	}
}

// resolveBackends applies the config file to the backend flags and validates them.
func resolveBackends(cmd *cobra.Command, cfg config.Config, o *runOptions) error {
	pick := func(key string) bool {
		return cmd.Flags().Lookup(key) != nil && !cmd.Flags().Changed(key) && cfg.IsSet(key)
	}
	if pick(config.KeyDiarizer) {
		o.diarizer = cfg.Diarizer
	}
	if pick(config.KeyDiarizerURL) {
		o.diarizerURL = cfg.DiarizerURL
	}
	if pick(config.KeyDiarizerModel) {
		o.diarizerModel = cfg.DiarizerModel
	}
	if pick(config.KeyVAD) {
		o.vad = cfg.VAD
	}
	if pick(config.KeyVADModel) {
		o.vadModel = cfg.VADModel
	}

	for key, value := range map[string]string{
		config.KeyDiarizer:      o.diarizer,
		config.KeyDiarizerURL:   o.diarizerURL,
		config.KeyDiarizerModel: o.diarizerModel,
		config.KeyVAD:           o.vad,
	} {
		if err := config.Validate(key, value); err != nil {
			return fmt.Errorf("%w: --%s: %w", ErrInvalidFlag, key, err)
		}
	}
	return nil
}

// runPipeline executes run (filter=true) or split (filter=false).
// Validation order: config -> flags -> tools -> credentials -> pipeline
func runPipeline(cmd *cobra.Command, env *Env, source string, o runOptions, filter bool) (err error) {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}
	pcfg := resolveConfig(cmd, cfg, source, o, filter)
	if err := pcfg.Validate(); err != nil {
		return err
	}
	if filter {
		if err := resolveBackends(cmd, cfg, &o); err != nil {
			return err
		}
	}

	// === SETUP ===

	ffmpegPath, err := env.ToolResolver.Resolve(toolchain.FFmpeg)
	if err != nil {
		return err
	}
	env.ToolResolver.CheckVersion(ctx, ffmpegPath)

	var ytdlpPath string
	if acquire.IsRemote(source) {
		if ytdlpPath, err = env.ToolResolver.Resolve(toolchain.YtDlp); err != nil {
			return err
		}
	}

	popts := []pipeline.Option{
		pipeline.WithStdout(env.Stdout),
		pipeline.WithStderr(env.Stderr),
		pipeline.WithLogger(env.Logger),
	}

	if pcfg.Filter {
		token := env.Getenv(EnvHFToken)
		if o.diarizer == config.DiarizerOpenAI {
			token = env.Getenv(EnvOpenAIAPIKey)
		}
		d, err := env.DiarizerFactory.NewDiarizer(o.diarizer, o.diarizerURL, o.diarizerModel, token)
		if err != nil {
			return err
		}
		popts = append(popts, pipeline.WithDiarizer(d))
	}

	if pcfg.Report {
		det, err := env.DetectorFactory.NewDetector(o.vad, config.ExpandPath(o.vadModel), env.Getenv(EnvOpenAIAPIKey))
		if err != nil {
			return err
		}
		if c, ok := det.(io.Closer); ok {
			defer func() {
				if closeErr := c.Close(); closeErr != nil {
					fmt.Fprintf(env.Stderr, "Warning: failed to release detector: %v\n", closeErr)
				}
			}()
		}
		popts = append(popts, pipeline.WithDetector(det))
	}

	acq := env.AcquirerFactory.NewAcquirer(ffmpegPath, ytdlpPath, config.ExpandPath(pcfg.WorkDir), env.Logger)
	p, err := pipeline.New(pcfg, acq, popts...)
	if err != nil {
		return err
	}

	// === RUN ===

	if o.metricsFile != "" {
		// Written even when the run fails.
		defer func() {
			if mErr := p.Metrics().WriteTextfile(config.ExpandPath(o.metricsFile)); mErr != nil {
				err = errors.Join(err, mErr)
			}
		}()
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Done: %d qualified, %d retained\n", len(res.Qualified), len(res.Retained()))
	return nil
}
