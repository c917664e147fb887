package vad

// Exported for external tests.
var (
	WithTranscriber  = withTranscriber
	JoinClose        = joinClose
	DropShort        = dropShort
	SecondsToSamples = secondsToSamples
	ValidSileroRate  = validSileroRate
	ToSegments       = toSegments
)
