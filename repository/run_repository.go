package repository

import (
	"context"
	"fmt"

	"TempoFM/model"

	"gorm.io/gorm"
)

// RunRepository persists ingest run history for later inspection.
type RunRepository interface {
	SaveRun(ctx context.Context, run *model.IngestRun, events []model.IngestEvent) error
	RecentRuns(ctx context.Context, limit int) ([]model.IngestRun, error)
}

// gormRunRepository implements RunRepository on top of GORM/MySQL.
type gormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a run-history repository.
func NewGormRunRepository(db *gorm.DB) RunRepository {
	return &gormRunRepository{db: db}
}

// SaveRun stores the run row and its per-asset events.
func (r *gormRunRepository) SaveRun(ctx context.Context, run *model.IngestRun, events []model.IngestEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to save ingest run: %w", err)
		}
		if len(events) > 0 {
			if err := tx.CreateInBatches(events, 100).Error; err != nil {
				return fmt.Errorf("failed to save ingest events: %w", err)
			}
		}
		return nil
	})
}

// RecentRuns returns the newest runs, most recent first.
func (r *gormRunRepository) RecentRuns(ctx context.Context, limit int) ([]model.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []model.IngestRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest runs: %w", err)
	}
	return runs, nil
}
