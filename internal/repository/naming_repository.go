package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shopify-integration-service/internal/models"
)

// SeriesRepository hands out document names from per-prefix counters
type SeriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new naming series repository
func NewSeriesRepository(db *gorm.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// Next increments the counter for prefix and returns the formatted name,
// e.g. SO-Shopify-00001
func (r *SeriesRepository) Next(ctx context.Context, prefix string) (string, error) {
	db := r.db.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.NamingSeries{Prefix: prefix}).Error; err != nil {
		return "", err
	}

	if err := db.Model(&models.NamingSeries{}).
		Where("prefix = ?", prefix).
		Update("current_value", gorm.Expr("current_value + 1")).Error; err != nil {
		return "", err
	}

	var series models.NamingSeries
	if err := db.First(&series, "prefix = ?", prefix).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, series.CurrentValue), nil
}
