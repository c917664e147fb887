package pipeline

import (
	"fmt"
	"io"

	"github.com/alnah/go-voicecorpus/internal/format"
	"github.com/alnah/go-voicecorpus/internal/vad"
)

// WriteReport prints one block per record:
//
//	Chunk: <path>
//	  Actual Duration: 12.34 seconds
//	  Voice Duration: 10.01 seconds
func WriteReport(w io.Writer, records []vad.Record) error {
	for _, r := range records {
		_, err := fmt.Fprintf(w, "Chunk: %s\n  Actual Duration: %s seconds\n  Voice Duration: %s seconds\n\n",
			r.Clip, format.Seconds(r.Total), format.Seconds(r.Speech))
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
