package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"TempoFM/cache"
	"TempoFM/config"
	"TempoFM/core/audio"
	"TempoFM/core/fingerprint"
	"TempoFM/core/ingest"
	"TempoFM/core/tags"
	"TempoFM/db"
	"TempoFM/logger"
	"TempoFM/model"
	"TempoFM/repository"
	"TempoFM/storage"
)

// buildEngine wires the ingest engine from configuration. Missing required
// collaborators (ffmpeg, fpcalc, MinIO) are fatal here, before any asset is
// touched; optional ones (aubio, redis, MySQL) degrade with a warning.
func buildEngine(cfg *config.Config, style, playlist string, skipNoTempo bool, tempDir string) (*ingest.Engine, repository.CatalogRepository, error) {
	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg 不可用 (%s): %w", cfg.FFmpegPath, err)
	}
	if _, err := exec.LookPath(cfg.FpcalcPath); err != nil {
		return nil, nil, fmt.Errorf("fpcalc 不可用 (%s): %w", cfg.FpcalcPath, err)
	}

	if tempDir == "" {
		tempDir = cfg.TempDir
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("创建临时目录失败: %w", err)
	}

	if err := storage.InitMinio(cfg); err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(storage.GetMinioClient(), cfg)

	// Redis is an optimization only; run without it when unreachable.
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis 不可用，指纹缓存已禁用", logger.ErrorField(err))
	}

	tagStore := tags.NewStore()
	resolver := fingerprint.NewResolver(
		fingerprint.NewChromaprint(cfg.FpcalcPath),
		tagStore,
		fingerprint.NewTokenCache(db.RedisClient, time.Duration(cfg.FingerprintCacheTTLHours)*time.Hour),
	)

	var analyzer ingest.TempoAnalyzer
	if a := audio.NewAubioAnalyzer(cfg.AubioPath); a != nil {
		analyzer = a
	}

	catalog := repository.NewFileCatalogRepository(cfg.PlaylistsDir, cfg.StylesDir, store)

	engine := ingest.NewEngine(ingest.Deps{
		Tags:        tagStore,
		Resolver:    resolver,
		Index:       cache.NewRemoteIndex(store),
		Transformer: audio.NewFFmpegProcessor(cfg.FFmpegPath, cfg.AudioBitrate, cfg.SampleRate, cfg.CoverSize),
		Analyzer:    analyzer,
		Publisher:   store,
		Catalog:     catalog,
		Style:       style,
		PlaylistID:  playlist,
		SkipNoTempo: skipNoTempo,
		TempDir:     tempDir,
	})

	return engine, catalog, nil
}

// saveRunHistory persists the run report when a history database is
// configured. Failures only warn; the report already reached stdout.
func saveRunHistory(cfg *config.Config, report *ingest.Report) {
	if cfg.DBHost == "" {
		return
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Warn("运行历史数据库不可用", logger.ErrorField(err))
		return
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.IngestRun{}, &model.IngestEvent{}); err != nil {
		logger.Warn("运行历史表迁移失败", logger.ErrorField(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, events := report.Rows()
	repo := repository.NewGormRunRepository(db.GormDB)
	if err := repo.SaveRun(ctx, &run, events); err != nil {
		logger.Warn("保存运行历史失败", logger.ErrorField(err))
	}
}
