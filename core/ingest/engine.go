package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"TempoFM/logger"
	"TempoFM/model"
	"TempoFM/storage"
)

// audioExtensions are the source container formats ingest accepts.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".aac":  {},
	".m4a":  {},
	".ogg":  {},
	".wma":  {},
}

// Deps are the collaborators and run parameters an Engine needs.
type Deps struct {
	Tags        MetadataStore
	Resolver    IdentityResolver
	Index       RemoteMembership
	Transformer Transformer
	Analyzer    TempoAnalyzer // nil disables tempo measurement
	Publisher   Publisher
	Catalog     Catalog

	Style       string
	PlaylistID  string
	SkipNoTempo bool
	TempDir     string
}

// Engine runs the ingest pipeline: one logical worker, assets processed
// sequentially because catalog mutation is single-writer. All per-asset
// failures are contained in the run report.
type Engine struct {
	tags        MetadataStore
	resolver    IdentityResolver
	index       RemoteMembership
	transformer Transformer
	analyzer    TempoAnalyzer
	publisher   Publisher
	catalog     Catalog

	style       string
	playlistID  string
	skipNoTempo bool
	tempDir     string
}

// NewEngine 创建导入引擎
func NewEngine(deps Deps) *Engine {
	return &Engine{
		tags:        deps.Tags,
		resolver:    deps.Resolver,
		index:       deps.Index,
		transformer: deps.Transformer,
		analyzer:    deps.Analyzer,
		publisher:   deps.Publisher,
		catalog:     deps.Catalog,
		style:       deps.Style,
		playlistID:  deps.PlaylistID,
		skipNoTempo: deps.SkipNoTempo,
		tempDir:     deps.TempDir,
	}
}

// Run processes every supported audio file under inputDir, recalculates
// tempo ranges for all playlists, and refreshes the style document. The
// returned report is valid even when Run returns a cancellation error;
// prior assets' catalog mutations are already durable.
func (e *Engine) Run(ctx context.Context, inputDir string) (*Report, error) {
	report := NewReport(e.style, e.playlistID)

	if err := e.catalog.SyncFromRemote(ctx); err != nil {
		return report, fmt.Errorf("同步远程目录文档失败: %w", err)
	}

	files, err := collectAudioFiles(inputDir)
	if err != nil {
		return report, err
	}
	logger.Info("开始处理音频文件",
		logger.String("dir", inputDir),
		logger.Int("count", len(files)))

	for _, path := range files {
		// Cancellation between assets leaves the catalog consistent.
		if err := ctx.Err(); err != nil {
			report.Finish()
			return report, err
		}
		e.ProcessAsset(ctx, path, report)
	}

	// 重新计算所有播放列表的速度范围
	summary, err := e.catalog.RecalculateAll(ctx)
	if err != nil {
		report.AddError("", fmt.Errorf("recalculate tempo ranges: %w", err))
	} else {
		for _, msg := range summary.Errors {
			report.AddError("", fmt.Errorf("%s", msg))
		}
		logger.Info("速度范围重算完成",
			logger.Int("updated", summary.Updated),
			logger.Int("unchanged", summary.Unchanged))
	}

	// Refresh the style entry so recalculated bounds propagate.
	if err := e.catalog.SyncStyleSummary(ctx, e.style, e.playlistID); err != nil {
		report.AddError("", &CatalogIOError{Document: e.style, Err: err})
	}

	report.Finish()
	return report, nil
}

// ProcessAsset runs the full per-asset flow. Every failure is contained:
// it is recorded on the report and the next asset proceeds.
func (e *Engine) ProcessAsset(ctx context.Context, path string, report *Report) {
	logger.Info("处理文件", logger.String("path", path))

	meta, err := e.tags.ReadMetadata(path)
	if err != nil {
		// Unreadable tags are not fatal; fingerprinting may still work and
		// the metadata validation rules will decide the asset's fate.
		logger.Warn("读取元数据失败", logger.String("path", path), logger.ErrorField(err))
		meta = model.AssetMetadata{Duration: -1}
	}

	d, err := e.Decide(ctx, path, meta)
	if err != nil {
		report.AddError(path, err)
		return
	}

	if d.TempoMeasured {
		report.AddTempoMeasured(path, d.Metadata.Tempo)
	}

	switch d.Outcome {
	case OutcomeSkipInvalid:
		report.AddSkipped(path, d.Reason, d.Err)
	case OutcomeReuseExisting:
		e.linkExisting(ctx, path, d, report)
	case OutcomeFullIngest:
		e.fullIngest(ctx, path, d, report)
	}
}

// linkExisting is the dedup path: the audio object already exists remotely,
// so the song is linked into the playlist with zero transform or upload
// work.
func (e *Engine) linkExisting(ctx context.Context, path string, d Decision, report *Report) {
	song := e.buildSong(d, "")

	res, err := e.catalog.UpsertSong(ctx, e.playlistID, e.style, song)
	if err != nil {
		report.AddError(path, &CatalogIOError{Document: e.playlistID, Err: err})
		return
	}
	if res == model.UpsertAlreadyPresent {
		logger.Info("歌曲已在播放列表中", logger.String("id", song.ID))
	}

	report.AddReused(path)
}

// fullIngest transforms, publishes, and links a new asset. Any transform or
// publish failure aborts this asset before the catalog is touched, so a
// failed upload never leaves a partial song entry.
func (e *Engine) fullIngest(ctx context.Context, path string, d Decision, report *Report) {
	audioName := d.Identity.Digest + ".mp3"

	workPath := path
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		tempMP3 := filepath.Join(e.tempDir, audioName)
		if err := e.transformer.ConvertToMP3(ctx, path, tempMP3); err != nil {
			report.AddError(path, &TransformError{Path: path, Err: err})
			return
		}
		defer os.Remove(tempMP3)
		workPath = tempMP3
	}

	if err := e.publisher.Publish(ctx, workPath, audioName, storage.CategoryAudio); err != nil {
		report.AddError(path, &PublishError{Path: path, Err: err})
		return
	}

	coverURL := ""
	if len(d.Metadata.Cover) > 0 {
		coverName := d.Identity.Digest + ".jpg"
		tempCover := filepath.Join(e.tempDir, coverName)

		if err := e.transformer.ResizeCover(ctx, d.Metadata.Cover, tempCover); err != nil {
			report.AddError(path, &TransformError{Path: path, Err: err})
			return
		}
		if err := e.publisher.Publish(ctx, tempCover, coverName, storage.CategoryAudio); err != nil {
			os.Remove(tempCover)
			report.AddError(path, &PublishError{Path: path, Err: err})
			return
		}
		os.Remove(tempCover)
		coverURL = e.publisher.ObjectURL(storage.CategoryAudio, coverName)
	}

	song := e.buildSong(d, coverURL)
	if _, err := e.catalog.UpsertSong(ctx, e.playlistID, e.style, song); err != nil {
		report.AddError(path, &CatalogIOError{Document: e.playlistID, Err: err})
		return
	}

	report.AddIngested(path)
}

// buildSong maps a decided asset onto a catalog song entry.
func (e *Engine) buildSong(d Decision, coverURL string) model.Song {
	duration := d.Metadata.Duration
	if duration < 0 {
		duration = 0
	}
	return model.Song{
		ID:       d.Identity.Digest,
		Title:    d.Metadata.Title,
		Artist:   d.Metadata.Artist,
		Album:    d.Metadata.Album,
		Tempo:    d.Metadata.Tempo,
		Duration: duration,
		Audio:    e.publisher.ObjectURL(storage.CategoryAudio, d.Identity.Digest+".mp3"),
		Cover:    coverURL,
	}
}

// collectAudioFiles walks inputDir recursively and returns the supported
// audio files in a stable order.
func collectAudioFiles(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if _, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历目录失败 %s: %w", inputDir, err)
	}
	sort.Strings(files)
	return files, nil
}
