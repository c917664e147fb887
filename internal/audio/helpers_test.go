package audio_test

import (
	"testing"
	"time"

	"github.com/alnah/go-voicecorpus/internal/audio"
)

// toneAmplitude is far above the -40 dBFS default threshold for 16-bit audio.
const toneAmplitude = 10000

// part is one stretch of a synthetic test signal.
type part struct {
	d    time.Duration
	loud bool
}

func tone(d time.Duration) part    { return part{d: d, loud: true} }
func silence(d time.Duration) part { return part{d: d} }

// buildWaveform concatenates mono 16-bit parts at the given sample rate.
// Loud parts are a full-scale-ish square wave, silent parts are zeros.
func buildWaveform(t *testing.T, sampleRate int, parts ...part) audio.Waveform {
	t.Helper()

	var data []int
	for _, p := range parts {
		n := int(int64(p.d) * int64(sampleRate) / int64(time.Second))
		for i := range n {
			switch {
			case !p.loud:
				data = append(data, 0)
			case i%2 == 0:
				data = append(data, toneAmplitude)
			default:
				data = append(data, -toneAmplitude)
			}
		}
	}

	w, err := audio.NewWaveform(data, sampleRate, 1, 16)
	if err != nil {
		t.Fatalf("NewWaveform() unexpected error: %v", err)
	}
	return w
}
