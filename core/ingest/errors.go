package ingest

import (
	"fmt"
	"strings"
)

// The per-asset error taxonomy. Every one of these is contained: it ends
// processing of that asset, lands in the run report, and never aborts the
// batch.

// FingerprintError means identity resolution failed for an asset.
type FingerprintError struct {
	Path string
	Err  error
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("fingerprint error for %s: %v", e.Path, e.Err)
}

func (e *FingerprintError) Unwrap() error { return e.Err }

// IncompleteMetadataError means required tag fields are missing.
type IncompleteMetadataError struct {
	Path    string
	Missing []string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("missing required metadata fields in %s: %s", e.Path, strings.Join(e.Missing, ", "))
}

// TempoUnavailableError means the asset has no tempo tag and measurement
// failed or was unavailable.
type TempoUnavailableError struct {
	Path string
	Err  error
}

func (e *TempoUnavailableError) Error() string {
	return fmt.Sprintf("could not determine tempo for %s: %v", e.Path, e.Err)
}

func (e *TempoUnavailableError) Unwrap() error { return e.Err }

// TransformError means format conversion or cover processing failed.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform error for %s: %v", e.Path, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// PublishError means uploading to the remote store failed. The catalog is
// never mutated for an asset whose publish failed.
type PublishError struct {
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish error for %s: %v", e.Path, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// CatalogIOError means reading or writing a catalog document failed.
type CatalogIOError struct {
	Document string
	Err      error
}

func (e *CatalogIOError) Error() string {
	return fmt.Sprintf("catalog I/O error for %s: %v", e.Document, e.Err)
}

func (e *CatalogIOError) Unwrap() error { return e.Err }
