package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"TempoFM/logger"
	"TempoFM/model"
	"TempoFM/storage"
)

// RemoteCatalog is the slice of the remote store the repository needs to
// keep documents synchronized. A nil RemoteCatalog keeps everything local.
type RemoteCatalog interface {
	ListExisting(ctx context.Context, category storage.Category) ([]string, error)
	Fetch(ctx context.Context, category storage.Category, name string) ([]byte, error)
	Publish(ctx context.Context, localPath, remoteName string, category storage.Category) error
}

// CatalogRepository defines the operations over playlist and style
// documents. All mutations are idempotent and keep the tempo-range
// invariant: a non-empty playlist's minTempo/maxTempo always equal the
// min/max tempo over its songs.
type CatalogRepository interface {
	UpsertSong(ctx context.Context, playlistID, style string, song model.Song) (model.UpsertResult, error)
	UpsertStyleSummary(ctx context.Context, style string, summary model.PlaylistSummary) error
	SyncStyleSummary(ctx context.Context, style, playlistID string) error
	RecalculateAll(ctx context.Context) (*model.RecalcSummary, error)
	SyncFromRemote(ctx context.Context) error
	LoadPlaylist(playlistID string) (*model.PlaylistDoc, error)
	LoadStyle(style string) (*model.StyleDoc, error)
}

// fileCatalogRepository persists one JSON document per playlist and per
// style. Documents are written whole (temp file + rename), so a document is
// either the old version or the new one, never half-written. A single
// mutex serializes read-modify-write cycles: the catalog is
// single-writer-per-process by design.
type fileCatalogRepository struct {
	mu           sync.Mutex
	playlistsDir string
	stylesDir    string
	remote       RemoteCatalog
}

// NewFileCatalogRepository creates a document-file backed catalog store.
func NewFileCatalogRepository(playlistsDir, stylesDir string, remote RemoteCatalog) CatalogRepository {
	return &fileCatalogRepository{
		playlistsDir: playlistsDir,
		stylesDir:    stylesDir,
		remote:       remote,
	}
}

// UpsertSong inserts a song into the playlist unless a song with the same
// id is already present. On insert the tempo bounds are recomputed over
// the full song set, the document is persisted and published, and the
// style document receives an updated summary. AlreadyPresent mutates
// nothing.
func (r *fileCatalogRepository) UpsertSong(ctx context.Context, playlistID, style string, song model.Song) (model.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadPlaylist(playlistID)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		doc = &model.PlaylistDoc{
			ID:    playlistID,
			Name:  model.DisplayName(playlistID),
			Style: model.DisplayName(style),
			Songs: []model.Song{},
		}
	}

	if doc.HasSong(song.ID) {
		return model.UpsertAlreadyPresent, nil
	}

	doc.Songs = append(doc.Songs, song)

	minTempo, maxTempo, err := doc.TempoRange()
	if err != nil {
		return 0, fmt.Errorf("播放列表 %s 无法计算速度范围: %w", playlistID, err)
	}
	doc.MinTempo = minTempo
	doc.MaxTempo = maxTempo

	if err := r.savePlaylist(ctx, doc); err != nil {
		return 0, err
	}
	logger.Info("歌曲已加入播放列表",
		logger.String("playlist", playlistID),
		logger.String("song", song.ID),
		logger.Int("minTempo", minTempo),
		logger.Int("maxTempo", maxTempo))

	if err := r.upsertStyleLocked(ctx, style, doc.Summary()); err != nil {
		return 0, err
	}

	return model.UpsertInserted, nil
}

// UpsertStyleSummary replaces the summary with the same playlist id in the
// style document, or appends it; other entries keep their order.
func (r *fileCatalogRepository) UpsertStyleSummary(ctx context.Context, style string, summary model.PlaylistSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertStyleLocked(ctx, style, summary)
}

// SyncStyleSummary re-derives the summary for a playlist from its current
// document and upserts it into the style document. Used after a
// recalculation pass so style entries catch up with changed bounds.
func (r *fileCatalogRepository) SyncStyleSummary(ctx context.Context, style, playlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.loadPlaylist(playlistID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("播放列表 %s 不存在，无法更新样式文档", playlistID)
	}

	return r.upsertStyleLocked(ctx, style, doc.Summary())
}

// RecalculateAll re-derives the tempo bounds of every playlist document
// from its current song set and writes back only the changed ones. Empty
// playlists and playlists without any positive tempo are recorded errors,
// never batch failures. Running it twice in a row produces no writes the
// second time.
func (r *fileCatalogRepository) RecalculateAll(ctx context.Context) (*model.RecalcSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := &model.RecalcSummary{}

	entries, err := os.ReadDir(r.playlistsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return summary, nil
		}
		return nil, fmt.Errorf("读取播放列表目录失败: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		playlistID := strings.TrimSuffix(entry.Name(), ".json")

		doc, err := r.loadPlaylist(playlistID)
		if err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}

		minTempo, maxTempo, err := doc.TempoRange()
		if err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}

		if doc.MinTempo == minTempo && doc.MaxTempo == maxTempo {
			summary.Unchanged++
			continue
		}

		doc.MinTempo = minTempo
		doc.MaxTempo = maxTempo
		if err := r.savePlaylist(ctx, doc); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}
		summary.Updated++
		logger.Info("速度范围已更新",
			logger.String("playlist", doc.ID),
			logger.Int("minTempo", minTempo),
			logger.Int("maxTempo", maxTempo))
	}

	return summary, nil
}

// SyncFromRemote downloads every remote playlist and style document into
// the local catalog directories. A remote store with no documents yet is a
// fresh start, not an error.
func (r *fileCatalogRepository) SyncFromRemote(ctx context.Context) error {
	if r.remote == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	targets := []struct {
		category storage.Category
		dir      string
	}{
		{storage.CategoryPlaylists, r.playlistsDir},
		{storage.CategoryStyles, r.stylesDir},
	}

	for _, t := range targets {
		if err := os.MkdirAll(t.dir, 0755); err != nil {
			return fmt.Errorf("创建目录 %s 失败: %w", t.dir, err)
		}

		names, err := r.remote.ListExisting(ctx, t.category)
		if err != nil {
			return fmt.Errorf("同步 %s 文档失败: %w", t.category, err)
		}

		count := 0
		for _, name := range names {
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			data, err := r.remote.Fetch(ctx, t.category, name)
			if err != nil {
				return fmt.Errorf("下载文档 %s 失败: %w", name, err)
			}
			if err := writeFileAtomic(filepath.Join(t.dir, name), data); err != nil {
				return err
			}
			count++
		}
		logger.Info("已同步远程文档",
			logger.String("category", string(t.category)),
			logger.Int("count", count))
	}

	return nil
}

// LoadPlaylist reads a playlist document; nil when it does not exist.
func (r *fileCatalogRepository) LoadPlaylist(playlistID string) (*model.PlaylistDoc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadPlaylist(playlistID)
}

// LoadStyle reads a style document; nil when it does not exist.
func (r *fileCatalogRepository) LoadStyle(style string) (*model.StyleDoc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadStyle(style)
}

func (r *fileCatalogRepository) playlistPath(playlistID string) string {
	return filepath.Join(r.playlistsDir, playlistID+".json")
}

func (r *fileCatalogRepository) stylePath(style string) string {
	return filepath.Join(r.stylesDir, style+".json")
}

func (r *fileCatalogRepository) loadPlaylist(playlistID string) (*model.PlaylistDoc, error) {
	data, err := os.ReadFile(r.playlistPath(playlistID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取播放列表 %s 失败: %w", playlistID, err)
	}

	var doc model.PlaylistDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析播放列表 %s 失败: %w", playlistID, err)
	}
	return &doc, nil
}

func (r *fileCatalogRepository) loadStyle(style string) (*model.StyleDoc, error) {
	data, err := os.ReadFile(r.stylePath(style))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取样式文档 %s 失败: %w", style, err)
	}

	var doc model.StyleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析样式文档 %s 失败: %w", style, err)
	}
	return &doc, nil
}

// savePlaylist persists the document locally and publishes it to the
// remote store. A failed remote publish keeps the durable local copy and is
// only logged; the document is republished on its next change.
func (r *fileCatalogRepository) savePlaylist(ctx context.Context, doc *model.PlaylistDoc) error {
	path := r.playlistPath(doc.ID)
	if err := marshalDocument(path, doc); err != nil {
		return err
	}
	r.publish(ctx, path, doc.ID+".json", storage.CategoryPlaylists)
	return nil
}

func (r *fileCatalogRepository) upsertStyleLocked(ctx context.Context, style string, summary model.PlaylistSummary) error {
	doc, err := r.loadStyle(style)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = &model.StyleDoc{
			Style:     model.DisplayName(style),
			Playlists: []model.PlaylistSummary{},
		}
	}

	doc.Upsert(summary)

	path := r.stylePath(style)
	if err := marshalDocument(path, doc); err != nil {
		return err
	}
	r.publish(ctx, path, style+".json", storage.CategoryStyles)

	logger.Info("样式文档已更新",
		logger.String("style", style),
		logger.String("playlist", summary.ID),
		logger.Int("minTempo", summary.MinTempo),
		logger.Int("maxTempo", summary.MaxTempo))
	return nil
}

func (r *fileCatalogRepository) publish(ctx context.Context, localPath, remoteName string, category storage.Category) {
	if r.remote == nil {
		return
	}
	if err := r.remote.Publish(ctx, localPath, remoteName, category); err != nil {
		logger.Warn("文档上传失败，本地副本已保存",
			logger.String("document", remoteName),
			logger.ErrorField(err))
	}
}

func marshalDocument(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化文档 %s 失败: %w", path, err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes the whole document to a sibling temp file and
// renames it into place, so readers never observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("写入文档 %s 失败: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("替换文档 %s 失败: %w", path, err)
	}
	return nil
}
