package cache

import (
	"context"
	"errors"
	"testing"

	"TempoFM/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	names []string
	err   error
	calls int
}

func (f *fakeLister) ListExisting(ctx context.Context, category storage.Category) ([]string, error) {
	f.calls++
	return f.names, f.err
}

func TestContainsRefreshesOnce(t *testing.T) {
	lister := &fakeLister{names: []string{"aaa.mp3", "bbb.mp3"}}
	index := NewRemoteIndex(lister)
	ctx := context.Background()

	ok, err := index.Contains(ctx, "aaa")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = index.Contains(ctx, "bbb")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = index.Contains(ctx, "ccc")
	require.NoError(t, err)
	assert.False(t, ok)

	// 整个运行期间只拉取一次远程列表
	assert.Equal(t, 1, lister.calls)
}

func TestContainsIgnoresNonAudioObjects(t *testing.T) {
	lister := &fakeLister{names: []string{"aaa.mp3", "aaa.jpg", "notes.txt"}}
	index := NewRemoteIndex(lister)

	ok, err := index.Contains(context.Background(), "aaa")
	require.NoError(t, err)
	assert.True(t, ok)

	// 封面对象不产生成员
	ok, err = index.Contains(context.Background(), "aaa.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContainsEmptyRemote(t *testing.T) {
	lister := &fakeLister{}
	index := NewRemoteIndex(lister)

	ok, err := index.Contains(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContainsPropagatesListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("remote down")}
	index := NewRemoteIndex(lister)

	_, err := index.Contains(context.Background(), "aaa")
	require.Error(t, err)

	// 失败不缓存；下一次调用重试
	lister.err = nil
	lister.names = []string{"aaa.mp3"}
	ok, err := index.Contains(context.Background(), "aaa")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, lister.calls)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	lister := &fakeLister{names: []string{"aaa.mp3"}}
	index := NewRemoteIndex(lister)
	ctx := context.Background()

	ok, err := index.Contains(ctx, "bbb")
	require.NoError(t, err)
	assert.False(t, ok)

	// 远程新增对象后，快照仍是旧的
	lister.names = []string{"aaa.mp3", "bbb.mp3"}
	ok, err = index.Contains(ctx, "bbb")
	require.NoError(t, err)
	assert.False(t, ok)

	index.Invalidate()
	ok, err = index.Contains(ctx, "bbb")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, lister.calls)
}
