package fingerprint

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"TempoFM/logger"
	"TempoFM/model"
)

// Fingerprinter computes an acoustic fingerprint for a file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (string, error)
}

// TokenWriter persists a fingerprint token back onto a source file.
type TokenWriter interface {
	WriteFingerprint(path, token string) error
}

// Resolver produces a stable identity for an asset. An embedded token is
// reused verbatim, so resolving twice on an untouched asset never changes
// its digest; otherwise the fingerprint service computes one and the token
// is written back to the original file (not any converted copy).
type Resolver struct {
	service Fingerprinter
	writer  TokenWriter
	cache   *TokenCache
}

// NewResolver 创建身份解析器；cache 可以为 nil
func NewResolver(service Fingerprinter, writer TokenWriter, cache *TokenCache) *Resolver {
	return &Resolver{service: service, writer: writer, cache: cache}
}

// Resolve returns the asset's identity. embedded is the token already
// carried in the file's tags, "" when absent.
func (r *Resolver) Resolve(ctx context.Context, path, embedded string) (model.AssetIdentity, error) {
	if embedded != "" {
		logger.Debug("复用已嵌入的指纹", logger.String("path", path))
		return identityFor(embedded), nil
	}

	if token := r.cache.Get(ctx, path); token != "" {
		logger.Debug("指纹缓存命中", logger.String("path", path))
		// The tag write-back evidently failed last time; try again so the
		// file eventually becomes self-describing.
		r.persist(path, token)
		return identityFor(token), nil
	}

	token, err := r.service.Fingerprint(ctx, path)
	if err != nil {
		return model.AssetIdentity{}, err
	}

	r.persist(path, token)
	r.cache.Set(ctx, path, token)

	return identityFor(token), nil
}

// persist writes the token back to the source file. Failure is logged and
// swallowed: the file just stays more expensive to ingest next time.
func (r *Resolver) persist(path, token string) {
	if r.writer == nil {
		return
	}
	if err := r.writer.WriteFingerprint(path, token); err != nil {
		logger.Warn("无法将指纹写回源文件", logger.String("path", path), logger.ErrorField(err))
	}
}

// Digest derives the remote filename stem from a fingerprint token.
func Digest(token string) string {
	sum := sha1.Sum([]byte(token))
	return hex.EncodeToString(sum[:])
}

func identityFor(token string) model.AssetIdentity {
	return model.AssetIdentity{Token: token, Digest: Digest(token)}
}
