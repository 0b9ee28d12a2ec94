package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFingerprinter struct {
	token string
	err   error
	calls int
}

func (f *fakeFingerprinter) Fingerprint(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.token, f.err
}

type fakeWriter struct {
	written map[string]string
	err     error
}

func (f *fakeWriter) WriteFingerprint(path, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.written == nil {
		f.written = make(map[string]string)
	}
	f.written[path] = token
	return nil
}

func TestDigestIsStable(t *testing.T) {
	// sha1("token") 的十六进制
	assert.Equal(t, "ee977806d7286510da8b9a7492ba58e2484c0ecc", Digest("token"))
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
}

func TestResolveReusesEmbeddedToken(t *testing.T) {
	service := &fakeFingerprinter{token: "computed"}
	r := NewResolver(service, &fakeWriter{}, nil)

	id, err := r.Resolve(context.Background(), "/music/a.mp3", "embedded-token")
	require.NoError(t, err)
	assert.Equal(t, "embedded-token", id.Token)
	assert.Equal(t, Digest("embedded-token"), id.Digest)

	// 已嵌入指纹时不调用指纹服务
	assert.Equal(t, 0, service.calls)
}

func TestResolveComputesAndPersists(t *testing.T) {
	service := &fakeFingerprinter{token: "fresh-token"}
	writer := &fakeWriter{}
	r := NewResolver(service, writer, nil)

	id, err := r.Resolve(context.Background(), "/music/a.flac", "")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", id.Token)
	assert.Equal(t, Digest("fresh-token"), id.Digest)
	assert.Equal(t, 1, service.calls)

	// 计算出的指纹写回源文件
	assert.Equal(t, "fresh-token", writer.written["/music/a.flac"])
}

func TestResolvePersistFailureIsNotFatal(t *testing.T) {
	service := &fakeFingerprinter{token: "tok"}
	writer := &fakeWriter{err: errors.New("read-only file")}
	r := NewResolver(service, writer, nil)

	id, err := r.Resolve(context.Background(), "/music/ro.mp3", "")
	require.NoError(t, err)
	assert.Equal(t, Digest("tok"), id.Digest)
}

func TestResolveServiceFailure(t *testing.T) {
	service := &fakeFingerprinter{err: errors.New("fpcalc exited 1")}
	r := NewResolver(service, &fakeWriter{}, nil)

	_, err := r.Resolve(context.Background(), "/music/bad.mp3", "")
	require.Error(t, err)
}

func TestTokenCacheNilClient(t *testing.T) {
	cache := NewTokenCache(nil, 0)
	ctx := context.Background()

	assert.Equal(t, "", cache.Get(ctx, "/music/a.mp3"))
	cache.Set(ctx, "/music/a.mp3", "tok") // 空操作，不应panic

	var nilCache *TokenCache
	assert.Equal(t, "", nilCache.Get(ctx, "/music/a.mp3"))
	nilCache.Set(ctx, "/music/a.mp3", "tok")
}
