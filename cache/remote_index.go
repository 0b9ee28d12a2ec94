package cache

import (
	"context"
	"strings"
	"sync"

	"TempoFM/logger"
	"TempoFM/storage"
)

// AudioLister is the slice of the remote store the index needs.
type AudioLister interface {
	ListExisting(ctx context.Context, category storage.Category) ([]string, error)
}

// RemoteIndex is a batch-scoped membership cache of the audio digests
// already present in the remote store.
//
// The remote listing is fetched lazily on the first Contains call and then
// reused for the whole run: membership checks happen once per asset while
// the listing call is comparatively expensive, so one snapshot trades a
// small staleness window for O(1) local checks. The snapshot is never
// refreshed mid-run; long-lived processes that span several runs must call
// Invalidate between them.
type RemoteIndex struct {
	mu      sync.Mutex
	store   AudioLister
	digests map[string]struct{}
	loaded  bool
}

// NewRemoteIndex 创建远程音频索引缓存
func NewRemoteIndex(store AudioLister) *RemoteIndex {
	return &RemoteIndex{store: store}
}

// Contains reports whether an audio object for the digest already exists
// remotely, refreshing the snapshot on first use.
func (c *RemoteIndex) Contains(ctx context.Context, digest string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.refresh(ctx); err != nil {
			return false, err
		}
	}

	_, ok := c.digests[digest]
	return ok, nil
}

// Invalidate drops the snapshot so the next Contains call re-fetches the
// remote listing. Intended for multi-run-in-process use only.
func (c *RemoteIndex) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.digests = nil
	c.loaded = false
}

// refresh fetches the remote audio listing. A missing or empty remote
// prefix is a fresh store, not an error. Caller holds the lock.
func (c *RemoteIndex) refresh(ctx context.Context) error {
	names, err := c.store.ListExisting(ctx, storage.CategoryAudio)
	if err != nil {
		return err
	}

	c.digests = make(map[string]struct{}, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, ".mp3") {
			continue
		}
		c.digests[strings.TrimSuffix(name, ".mp3")] = struct{}{}
	}
	c.loaded = true

	logger.Info("远程音频索引已加载", logger.Int("count", len(c.digests)))
	return nil
}
