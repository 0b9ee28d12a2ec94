package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TempoFM/logger"

	"github.com/fsnotify/fsnotify"
)

// Watch ingests supported audio files as they appear in dir. It performs
// the same per-asset pipeline as a batch run; the caller is responsible for
// printing or persisting the report once Watch returns.
func (e *Engine) Watch(ctx context.Context, dir string, report *Report) error {
	if err := e.catalog.SyncFromRemote(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Info("监听目录中的新文件", logger.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, supported := audioExtensions[strings.ToLower(filepath.Ext(event.Name))]; !supported {
				continue
			}
			if err := waitForStableFile(ctx, event.Name); err != nil {
				logger.Warn("文件未稳定，跳过", logger.String("path", event.Name), logger.ErrorField(err))
				continue
			}
			e.ProcessAsset(ctx, event.Name, report)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("文件监听错误", logger.ErrorField(err))
		}
	}
}

// waitForStableFile waits until the file size stops changing, so a file
// still being copied in is not ingested half-written.
func waitForStableFile(ctx context.Context, path string) error {
	const (
		interval = 500 * time.Millisecond
		maxWait  = 30 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	var lastSize int64 = -1

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && lastSize >= 0 {
			return nil
		}
		lastSize = info.Size()
	}

	return context.DeadlineExceeded
}
