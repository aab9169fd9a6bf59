package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// IntegrationLogRepository handles database operations for integration logs
type IntegrationLogRepository struct {
	db *gorm.DB
}

// NewIntegrationLogRepository creates a new integration log repository
func NewIntegrationLogRepository(db *gorm.DB) *IntegrationLogRepository {
	return &IntegrationLogRepository{db: db}
}

// Create creates a new log entry
func (r *IntegrationLogRepository) Create(ctx context.Context, log *models.IntegrationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByID retrieves a log entry by ID
func (r *IntegrationLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.IntegrationLog, error) {
	return getOne[models.IntegrationLog](r.db.WithContext(ctx).Where("id = ?", id))
}

// Update applies a partial update to a log entry
func (r *IntegrationLogRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.IntegrationLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// RecordAttempt stores the outcome of one processing attempt
func (r *IntegrationLogRepository) RecordAttempt(ctx context.Context, id uuid.UUID, status models.LogStatus, message, traceback string) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status":    status,
		"message":   message,
		"traceback": traceback,
		"attempts":  gorm.Expr("attempts + 1"),
	})
}

// LogListOptions contains options for listing logs
type LogListOptions struct {
	ShopID *uuid.UUID
	Method string
	Status models.LogStatus
	Limit  int
	Offset int
}

// List retrieves logs with pagination and filtering, newest first
func (r *IntegrationLogRepository) List(ctx context.Context, opts LogListOptions) ([]models.IntegrationLog, int64, error) {
	var logs []models.IntegrationLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.IntegrationLog{})

	if opts.ShopID != nil {
		query = query.Where("shop_id = ?", *opts.ShopID)
	}
	if opts.Method != "" {
		query = query.Where("method = ?", opts.Method)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
