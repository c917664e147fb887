// Package pipeline runs a corpus build end to end: acquire, split, export,
// filter by speaker, export again, then estimate speech duration.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-voicecorpus/internal/acquire"
	"github.com/alnah/go-voicecorpus/internal/audio"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/format"
	"github.com/alnah/go-voicecorpus/internal/metrics"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// Result is everything a run produced.
type Result struct {
	AudioPath string       // Canonical WAV the clips were cut from.
	Qualified []audio.Clip // Exported to the qualified directory.
	Filtered  []audio.Clip // Exported to the filtered directory; nil without filtering.
	Records   []vad.Record // Nil without reporting.
}

// Retained returns the clips that survived every enabled stage.
func (r Result) Retained() []audio.Clip {
	if r.Filtered != nil {
		return r.Filtered
	}
	return r.Qualified
}

// Pipeline runs the stages in order. Each stage completes before the next
// starts; the first failure aborts the run.
type Pipeline struct {
	cfg      Config
	acquirer acquire.Acquirer
	diarizer diarize.Diarizer
	detector vad.Detector
	splitter *audio.Splitter
	metrics  *metrics.Metrics

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	readWAV func(path string) (audio.Waveform, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDiarizer sets the backend used to filter by speaker.
func WithDiarizer(d diarize.Diarizer) Option {
	return func(p *Pipeline) {
		p.diarizer = d
	}
}

// WithDetector sets the backend used for the speech duration report.
func WithDetector(d vad.Detector) Option {
	return func(p *Pipeline) {
		p.detector = d
	}
}

// WithMetrics sets the collectors the run reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithStdout sets where the report is printed.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stdout = w
	}
}

// WithStderr sets where progress lines are printed.
func WithStderr(w io.Writer) Option {
	return func(p *Pipeline) {
		p.stderr = w
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// withWAVReader sets a custom WAV decoder (for testing).
func withWAVReader(fn func(string) (audio.Waveform, error)) Option {
	return func(p *Pipeline) {
		p.readWAV = fn
	}
}

// New validates cfg and builds a Pipeline. A diarizer is required when
// cfg.Filter is set and a detector when cfg.Report is set.
func New(cfg Config, a acquire.Acquirer, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		acquirer: a,
		metrics:  metrics.New(),
		stdout:   io.Discard,
		stderr:   io.Discard,
		logger:   slog.New(slog.DiscardHandler),
		readWAV:  audio.ReadWAV,
	}
	for _, opt := range opts {
		opt(p)
	}

	if a == nil {
		return nil, fmt.Errorf("%w: no acquirer", ErrInvalidConfig)
	}
	if cfg.Filter && p.diarizer == nil {
		return nil, fmt.Errorf("%w: speaker filtering needs a diarizer", ErrInvalidConfig)
	}
	if cfg.Report && p.detector == nil {
		return nil, fmt.Errorf("%w: duration report needs a voice activity detector", ErrInvalidConfig)
	}

	s, err := audio.NewSplitter(cfg.MinDuration, cfg.MaxDuration, cfg.SilenceGap,
		audio.WithSilenceThreshold(cfg.SilenceThreshold),
		audio.WithKeepSilence(cfg.KeepSilence),
		audio.WithSegmentHook(p.metrics.SegmentHook()),
		audio.WithSplitWarnFunc(func(msg string) { p.logger.Warn(msg) }),
	)
	if err != nil {
		return nil, err
	}
	p.splitter = s
	return p, nil
}

// Metrics returns the collectors the run reports to.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}

// Run executes every enabled stage. When splitting or filtering leaves no
// clips, the run stops early without error.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	p.progress("Acquiring audio from %s...", p.cfg.Source)
	done := p.metrics.Time(metrics.StageAcquire)
	path, err := p.acquirer.Acquire(ctx, p.cfg.Source)
	done()
	if err != nil {
		return res, err
	}
	res.AudioPath = path

	clips, err := p.split(path)
	if err != nil {
		return res, err
	}
	if len(clips) == 0 {
		p.progress("No qualified chunks found; nothing to do.")
		return res, nil
	}

	res.Qualified, err = p.exportQualified(clips)
	if err != nil {
		return res, err
	}

	if p.cfg.Filter {
		res.Filtered, err = p.filter(ctx, res.Qualified)
		if err != nil {
			return res, err
		}
		if len(res.Filtered) == 0 {
			p.progress("No single-speaker chunks found.")
			return res, nil
		}
	}

	if p.cfg.Report {
		res.Records, err = p.estimate(ctx, res.Retained())
		if err != nil {
			return res, err
		}
		if err := WriteReport(p.stdout, res.Records); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Pipeline) split(path string) ([]audio.Clip, error) {
	defer p.metrics.Time(metrics.StageSplit)()

	w, err := p.readWAV(path)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("decoded source",
		"path", path,
		"duration", w.Duration(),
		"sample_rate", w.SampleRate(),
		"channels", w.Channels())

	p.progress("Splitting %s of audio...", format.Duration(w.Duration()))
	clips := p.splitter.Split(w)
	p.logger.Debug("split source", "clips", len(clips))
	return clips, nil
}

func (p *Pipeline) exportQualified(clips []audio.Clip) ([]audio.Clip, error) {
	defer p.metrics.Time(metrics.StageQualify)()

	e := audio.NewExporter(p.cfg.QualifiedDir, p.cfg.Prefix, audio.WithExportHook(func(c audio.Clip) {
		label := "qualified chunk"
		if c.Outcome == audio.Subdivided {
			label = "sub-chunk"
		}
		p.progress("Saved %s: %s | Duration: %s seconds", label, c.Path, format.Seconds(c.Duration()))
	}))
	out, err := e.ExportAll(clips)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveExported(metrics.StageQualify, len(out))
	p.progress("Completed splitting the audio. Total qualified chunks: %d", len(out))
	return out, nil
}

func (p *Pipeline) filter(ctx context.Context, clips []audio.Clip) ([]audio.Clip, error) {
	p.progress("Filtering %d chunks by speaker...", len(clips))

	observe := p.metrics.SpeakerHook()
	done := p.metrics.Time(metrics.StageDiarize)
	kept, err := diarize.Filter(ctx, clips, p.diarizer,
		diarize.WithSpeakerHook(func(c audio.Clip, speakers []string) {
			p.logger.Debug("diarized clip", "path", c.Path, "speakers", speakers)
			observe(c, speakers)
		}))
	done()
	if err != nil {
		return nil, err
	}

	defer p.metrics.Time(metrics.StageFiltered)()
	e := audio.NewExporter(p.cfg.FilteredDir, p.cfg.Prefix, audio.WithExportHook(func(c audio.Clip) {
		p.progress("Saved filtered chunk: %s", c.Path)
	}))
	out, err := e.ExportAll(kept)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveExported(metrics.StageFiltered, len(out))
	return out, nil
}

func (p *Pipeline) estimate(ctx context.Context, clips []audio.Clip) ([]vad.Record, error) {
	defer p.metrics.Time(metrics.StageVAD)()

	p.progress("Measuring voice activity in %d chunks...", len(clips))
	records, err := vad.Estimate(ctx, clips, p.detector)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveRecords(records)
	return records, nil
}

func (p *Pipeline) progress(msg string, args ...any) {
	fmt.Fprintf(p.stderr, msg+"\n", args...)
}
