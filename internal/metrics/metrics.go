// Package metrics records run statistics in a Prometheus registry and writes
// them as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alnah/go-voicecorpus/internal/audio"
	"github.com/alnah/go-voicecorpus/internal/diarize"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

const namespace = "voicecorpus"

// Stage names used as label values.
const (
	StageAcquire  = "acquire"
	StageSplit    = "split"
	StageQualify  = "qualified"
	StageDiarize  = "diarize"
	StageFiltered = "filtered"
	StageVAD      = "vad"
)

// Metrics holds the collectors of one run. Each Metrics owns its registry so
// runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	Segments        *prometheus.CounterVec
	SegmentDuration *prometheus.HistogramVec
	ClipsExported   *prometheus.CounterVec
	SpeakersPerClip prometheus.Histogram
	SpeechRatio     prometheus.Histogram
	StageDuration   *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Segments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Silence-delimited segments seen by the splitter, by outcome",
		}, []string{"outcome"}),
		SegmentDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segment_duration_seconds",
			Help:      "Length of splitter segments, by outcome",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~1 minute
		}, []string{"outcome"}),
		ClipsExported: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_exported_total",
			Help:      "Clips written to disk, by stage",
		}, []string{"stage"}),
		SpeakersPerClip: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "speakers_per_clip",
			Help:      "Distinct speakers found by diarization in each clip",
			Buckets:   prometheus.LinearBuckets(0, 1, 5),
		}),
		SpeechRatio: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "speech_ratio",
			Help:      "Share of each retained clip detected as speech",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0 to 1.0
		}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time spent in each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms to ~45 minutes
		}, []string{"stage"}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SegmentHook returns a splitter hook feeding the segment collectors.
func (m *Metrics) SegmentHook() audio.SegmentHook {
	return func(o audio.Outcome, d time.Duration) {
		m.Segments.WithLabelValues(o.String()).Inc()
		m.SegmentDuration.WithLabelValues(o.String()).Observe(d.Seconds())
	}
}

// SpeakerHook returns a filter hook feeding the speakers histogram.
func (m *Metrics) SpeakerHook() diarize.SpeakerHook {
	return func(_ audio.Clip, speakers []string) {
		m.SpeakersPerClip.Observe(float64(len(speakers)))
	}
}

// ObserveExported counts n clips written during stage.
func (m *Metrics) ObserveExported(stage string, n int) {
	m.ClipsExported.WithLabelValues(stage).Add(float64(n))
}

// ObserveRecords feeds the speech ratio of every record.
func (m *Metrics) ObserveRecords(records []vad.Record) {
	for _, r := range records {
		m.SpeechRatio.Observe(r.Ratio())
	}
}

// Time starts timing stage. Call the returned function when it ends.
func (m *Metrics) Time(stage string) func() {
	t := prometheus.NewTimer(m.StageDuration.WithLabelValues(stage))
	return func() { t.ObserveDuration() }
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
