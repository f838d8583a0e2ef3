package db

import (
	"context"
	"fmt"

	"geo-news/internal/article"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(conn *gorm.DB) *RunRepository {
	return &RunRepository{db: conn}
}

func (r *RunRepository) Record(ctx context.Context, run *article.ScrapeRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record scrape run: %w", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]article.ScrapeRun, error) {
	var runs []article.ScrapeRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list scrape runs: %w", err)
	}
	return runs, nil
}
