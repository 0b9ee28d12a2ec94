package ingest

import (
	"context"

	"TempoFM/model"
	"TempoFM/storage"
)

// The engine consumes its collaborators through narrow interfaces so a run
// can be assembled from the real ffmpeg/fpcalc/MinIO implementations or
// from fakes in tests.

// MetadataStore reads and writes asset-embedded metadata.
type MetadataStore interface {
	ReadMetadata(path string) (model.AssetMetadata, error)
	WriteTempo(path string, bpm int) error
}

// IdentityResolver produces the content-stable identity for an asset.
type IdentityResolver interface {
	Resolve(ctx context.Context, path, embedded string) (model.AssetIdentity, error)
}

// RemoteMembership answers "does this digest already exist remotely?".
type RemoteMembership interface {
	Contains(ctx context.Context, digest string) (bool, error)
}

// Transformer converts audio and cover art into publishable form.
type Transformer interface {
	ConvertToMP3(ctx context.Context, inputFile, outputFile string) error
	ResizeCover(ctx context.Context, coverData []byte, outputFile string) error
}

// TempoAnalyzer measures tempo in BPM. May be nil on the engine, in which
// case tempo-less assets are always skipped.
type TempoAnalyzer interface {
	MeasureTempo(ctx context.Context, inputFile string) (int, error)
}

// Publisher uploads artifacts to the remote store and names their public
// URLs.
type Publisher interface {
	Publish(ctx context.Context, localPath, remoteName string, category storage.Category) error
	ObjectURL(category storage.Category, name string) string
}

// Catalog is the persisted playlist/style document store.
type Catalog interface {
	UpsertSong(ctx context.Context, playlistID, style string, song model.Song) (model.UpsertResult, error)
	SyncStyleSummary(ctx context.Context, style, playlistID string) error
	RecalculateAll(ctx context.Context) (*model.RecalcSummary, error)
	SyncFromRemote(ctx context.Context) error
}
