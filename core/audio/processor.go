package audio

import "context"

// Transformer defines the audio transform operations used during ingest.
type Transformer interface {
	ConvertToMP3(ctx context.Context, inputFile, outputFile string) error
	ResizeCover(ctx context.Context, coverData []byte, outputFile string) error
}

// TempoAnalyzer measures the tempo of an audio file in BPM. This
// collaborator is optional; when unavailable the ingest pipeline skips
// tempo-less assets instead.
type TempoAnalyzer interface {
	MeasureTempo(ctx context.Context, inputFile string) (int, error)
}
