package audio

import (
	"fmt"
	"time"

	"github.com/alnah/go-voicecorpus/internal/format"
)

// Default clip bounds.
const (
	// DefaultMinDuration is the shortest clip the splitter emits.
	DefaultMinDuration = 6 * time.Second

	// DefaultMaxDuration is the longest clip the splitter emits.
	// Longer segments are cut into consecutive windows of this length.
	DefaultMaxDuration = 18 * time.Second
)

// Clip is a bounded-duration piece of the source audio.
// Path is empty until the clip is exported.
type Clip struct {
	Index     int           // Zero-based, in emission order.
	Path      string        // File the clip was exported to.
	StartTime time.Duration // Offset in the source audio.
	EndTime   time.Duration // End offset in the source audio.
	Outcome   Outcome       // Accepted, or Subdivided when cut from a longer segment.
	Waveform  Waveform
}

// Duration returns the length of the clip audio.
func (c Clip) Duration() time.Duration {
	return c.Waveform.Duration()
}

// String returns a human-readable representation for logging.
func (c Clip) String() string {
	return fmt.Sprintf("clip %d: %s-%s",
		c.Index,
		format.Duration(c.StartTime),
		format.Duration(c.EndTime))
}

// Outcome classifies what the splitter did with a detected segment.
type Outcome int

const (
	// Accepted means the segment fit the bounds and became one clip.
	Accepted Outcome = iota
	// Subdivided means the piece came from cutting an over-long segment.
	Subdivided
	// Discarded means the segment or piece was shorter than the minimum.
	Discarded
)

// String returns the lowercase outcome name used in logs and metric labels.
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Subdivided:
		return "subdivided"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// SegmentHook observes every segment decision made by the splitter.
type SegmentHook func(o Outcome, d time.Duration)

// WarnFunc is a callback for warning messages during splitting.
type WarnFunc func(msg string)

// Splitter turns a waveform into silence-aligned clips whose durations lie
// within [minDuration, maxDuration].
//
// Each pass runs silence detection on the unprocessed remainder, keeps the
// segments that fit, cuts over-long ones into maxDuration windows, drops the
// rest, then advances the cursor by the summed length of every segment of the
// pass. Because segments carry kept-silence padding and skip long silences,
// that sum does not line up exactly with the last segment boundary; the next
// pass simply re-detects from wherever the cursor lands. Splitting stops when
// a pass finds no segments, and whatever remains is dropped.
type Splitter struct {
	minDuration time.Duration
	maxDuration time.Duration
	thresholdDB float64
	keepSilence time.Duration
	detector    SilenceDetector
	hook        SegmentHook
	warn        WarnFunc
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithDetector replaces the default energy-based silence detector.
func WithDetector(d SilenceDetector) SplitterOption {
	return func(s *Splitter) {
		s.detector = d
	}
}

// WithSilenceThreshold sets the dBFS level below which the default detector
// treats audio as silence. Ignored when WithDetector is used.
func WithSilenceThreshold(db float64) SplitterOption {
	return func(s *Splitter) {
		s.thresholdDB = db
	}
}

// WithKeepSilence sets the silence the default detector keeps around each
// segment. Ignored when WithDetector is used.
func WithKeepSilence(d time.Duration) SplitterOption {
	return func(s *Splitter) {
		s.keepSilence = d
	}
}

// WithSegmentHook sets an observer for segment decisions.
func WithSegmentHook(fn SegmentHook) SplitterOption {
	return func(s *Splitter) {
		s.hook = fn
	}
}

// WithSplitWarnFunc sets a callback for warnings. Warnings are dropped by default.
func WithSplitWarnFunc(fn WarnFunc) SplitterOption {
	return func(s *Splitter) {
		s.warn = fn
	}
}

// NewSplitter creates a Splitter for clips between minDuration and maxDuration.
// Without WithDetector, segments are found by an EnergyDetector using silenceGap
// as the minimum silence length.
func NewSplitter(minDuration, maxDuration, silenceGap time.Duration, opts ...SplitterOption) (*Splitter, error) {
	if minDuration <= 0 {
		return nil, fmt.Errorf("%w: min duration %v must be positive", ErrInvalidBounds, minDuration)
	}
	if maxDuration < minDuration {
		return nil, fmt.Errorf("%w: max duration %v < min duration %v", ErrInvalidBounds, maxDuration, minDuration)
	}
	if silenceGap <= 0 {
		return nil, fmt.Errorf("%w: silence gap %v must be positive", ErrInvalidBounds, silenceGap)
	}

	s := &Splitter{
		minDuration: minDuration,
		maxDuration: maxDuration,
		thresholdDB: DefaultSilenceThreshold,
		keepSilence: DefaultKeepSilence,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keepSilence < 0 {
		return nil, fmt.Errorf("%w: keep silence %v must not be negative", ErrInvalidBounds, s.keepSilence)
	}
	if s.detector == nil {
		d := NewEnergyDetector(silenceGap)
		d.ThresholdDB = s.thresholdDB
		d.KeepSilence = s.keepSilence
		s.detector = d
	}
	return s, nil
}

// Split returns the clips of w in source order, indexed from zero.
// The source waveform is never modified.
func (s *Splitter) Split(w Waveform) []Clip {
	minFrames := w.FramesFor(s.minDuration)
	maxFrames := max(1, w.FramesFor(s.maxDuration))

	var clips []Clip
	emit := func(piece Waveform, start int, o Outcome) {
		clips = append(clips, Clip{
			Index:     len(clips),
			StartTime: w.FramesDuration(start),
			EndTime:   w.FramesDuration(start + piece.Frames()),
			Outcome:   o,
			Waveform:  piece,
		})
		s.observe(o, piece.Duration())
	}

	cursor := 0
	remaining := w
	for !remaining.IsEmpty() {
		spans := s.detector.Segments(remaining)
		if len(spans) == 0 {
			s.warnf("no segments in remaining %s, dropping it", format.Seconds(remaining.Duration()))
			break
		}

		processed := 0
		for _, span := range spans {
			segment := remaining.Slice(span.Start, span.End)
			n := segment.Frames()
			processed += n
			origin := cursor + span.Start

			switch {
			case n >= minFrames && n <= maxFrames:
				emit(segment, origin, Accepted)
			case n > maxFrames:
				for off := 0; off < n; off += maxFrames {
					piece := segment.Slice(off, off+maxFrames)
					if piece.Frames() >= minFrames {
						emit(piece, origin+off, Subdivided)
					} else {
						s.observe(Discarded, piece.Duration())
					}
				}
			default:
				s.observe(Discarded, segment.Duration())
			}
		}

		// A detector returning only empty spans would otherwise loop forever.
		if processed == 0 {
			s.warnf("silence detection made no progress at %s, stopping", format.Duration(w.FramesDuration(cursor)))
			break
		}
		cursor += processed
		remaining = remaining.Slice(processed, remaining.Frames())
	}

	return clips
}

func (s *Splitter) observe(o Outcome, d time.Duration) {
	if s.hook != nil {
		s.hook(o, d)
	}
}

func (s *Splitter) warnf(msg string, args ...any) {
	if s.warn != nil {
		s.warn(fmt.Sprintf(msg, args...))
	}
}
