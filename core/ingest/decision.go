package ingest

import (
	"context"

	"TempoFM/logger"
	"TempoFM/model"
)

// Outcome is the terminal state of the per-asset decision machine.
type Outcome string

const (
	OutcomeFullIngest    Outcome = "full-ingest"
	OutcomeReuseExisting Outcome = "reuse-existing"
	OutcomeSkipInvalid   Outcome = "skip-invalid"
)

// SkipReason explains an OutcomeSkipInvalid decision.
type SkipReason string

const (
	ReasonFingerprintError   SkipReason = "fingerprint-error"
	ReasonIncompleteMetadata SkipReason = "incomplete-metadata"
	ReasonNoTempo            SkipReason = "no-tempo"
	ReasonTempoUnmeasurable  SkipReason = "tempo-unmeasurable"
)

// Decision is the tagged outcome for one asset. Skip decisions carry a
// reason and, where applicable, the underlying error; successful decisions
// carry the resolved identity and the (possibly tempo-enriched) metadata.
type Decision struct {
	Outcome       Outcome
	Reason        SkipReason
	Err           error
	Identity      model.AssetIdentity
	Metadata      model.AssetMetadata
	TempoMeasured bool
}

// Decide runs the decision rules for one asset, in order:
//
//  1. identity resolution; failure skips the asset
//  2. digest already remote: validate the minimal metadata subset and
//     reuse the existing object (no transform, no upload)
//  3. tempo absent: skip when configured or when no analyzer is available,
//     otherwise measure and persist the tempo back to the source file
//  4. validate the full publish subset
//  5. full ingest
//
// The returned error is an infrastructure failure (remote index refresh),
// contained by the caller like any other per-asset error.
func (e *Engine) Decide(ctx context.Context, path string, meta model.AssetMetadata) (Decision, error) {
	d := Decision{Metadata: meta}

	identity, err := e.resolver.Resolve(ctx, path, meta.Fingerprint)
	if err != nil {
		d.Outcome = OutcomeSkipInvalid
		d.Reason = ReasonFingerprintError
		d.Err = &FingerprintError{Path: path, Err: err}
		return d, nil
	}
	d.Identity = identity

	exists, err := e.index.Contains(ctx, identity.Digest)
	if err != nil {
		return d, err
	}

	if exists {
		if missing := meta.MissingCoreFields(); len(missing) > 0 {
			d.Outcome = OutcomeSkipInvalid
			d.Reason = ReasonIncompleteMetadata
			d.Err = &IncompleteMetadataError{Path: path, Missing: missing}
			return d, nil
		}
		logger.Info("资源已存在于远程，仅链接到播放列表",
			logger.String("path", path),
			logger.String("digest", identity.Digest))
		d.Outcome = OutcomeReuseExisting
		return d, nil
	}

	if meta.Tempo <= 0 {
		if e.skipNoTempo || e.analyzer == nil {
			d.Outcome = OutcomeSkipInvalid
			d.Reason = ReasonNoTempo
			return d, nil
		}

		bpm, err := e.analyzer.MeasureTempo(ctx, path)
		if err != nil {
			d.Outcome = OutcomeSkipInvalid
			d.Reason = ReasonTempoUnmeasurable
			d.Err = &TempoUnavailableError{Path: path, Err: err}
			return d, nil
		}

		d.Metadata.Tempo = bpm
		d.TempoMeasured = true
		if err := e.tags.WriteTempo(path, bpm); err != nil {
			// Not fatal; the tempo just has to be measured again next run.
			logger.Warn("无法将BPM写回源文件", logger.String("path", path), logger.ErrorField(err))
		}
	}

	if missing := d.Metadata.MissingPublishFields(); len(missing) > 0 {
		d.Outcome = OutcomeSkipInvalid
		d.Reason = ReasonIncompleteMetadata
		d.Err = &IncompleteMetadataError{Path: path, Missing: missing}
		return d, nil
	}

	d.Outcome = OutcomeFullIngest
	return d, nil
}
