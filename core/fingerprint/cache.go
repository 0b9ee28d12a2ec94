package fingerprint

import (
	"context"
	"fmt"
	"os"
	"time"

	"TempoFM/logger"

	"github.com/redis/go-redis/v9"
)

// TokenCache memoizes computed fingerprints in Redis across runs, keyed by
// path+size+mtime. The tag write-back is the primary persistence for a
// token; this cache covers read-only source files where the write-back
// fails. A nil client disables the cache.
type TokenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenCache 创建跨运行的指纹缓存
func NewTokenCache(rdb *redis.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenCache{rdb: rdb, ttl: ttl}
}

func cacheKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tempofm:fp:%s:%d:%d", path, info.Size(), info.ModTime().Unix()), nil
}

// Get returns the cached token for an unaltered file, "" on miss.
func (c *TokenCache) Get(ctx context.Context, path string) string {
	if c == nil || c.rdb == nil {
		return ""
	}

	key, err := cacheKey(path)
	if err != nil {
		return ""
	}

	token, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("指纹缓存读取失败", logger.String("path", path), logger.ErrorField(err))
		}
		return ""
	}
	return token
}

// Set stores a computed token. Failures are logged, never propagated; the
// cache is an optimization only.
func (c *TokenCache) Set(ctx context.Context, path, token string) {
	if c == nil || c.rdb == nil {
		return
	}

	key, err := cacheKey(path)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key, token, c.ttl).Err(); err != nil {
		logger.Debug("指纹缓存写入失败", logger.String("path", path), logger.ErrorField(err))
	}
}
