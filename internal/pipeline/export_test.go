package pipeline

// Exported for external tests.
var WithWAVReader = withWAVReader
