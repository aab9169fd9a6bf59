package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// PayoutRepository handles database operations for payout ledgers
type PayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create creates a payout with its transactions
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// Exists reports whether a Shopify payout was already recorded for a shop
func (r *PayoutRepository) Exists(ctx context.Context, shopID uuid.UUID, shopifyPayoutID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("shop_id = ? AND shopify_payout_id = ?", shopID, shopifyPayoutID).
		Count(&count).Error
	return count > 0, err
}

// GetByID retrieves a payout with its transactions
func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return getOne[models.Payout](r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ?", id))
}

// PayoutListOptions contains options for listing payouts
type PayoutListOptions struct {
	ShopID *uuid.UUID
	Limit  int
	Offset int
}

// List retrieves payouts with pagination, newest payout date first
func (r *PayoutRepository) List(ctx context.Context, opts PayoutListOptions) ([]models.Payout, int64, error) {
	var payouts []models.Payout
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payout{})
	if opts.ShopID != nil {
		query = query.Where("shop_id = ?", *opts.ShopID)
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

	if err := query.Order("payout_date DESC").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// Update applies a partial update to a payout
func (r *PayoutRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Payout{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateFinancialStatusForOrder refreshes the cached financial status on every
// payout transaction of an order
func (r *PayoutRepository) UpdateFinancialStatusForOrder(ctx context.Context, shopID uuid.UUID, orderID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.PayoutTransaction{}).
		Where("shop_id = ? AND source_order_id = ?", shopID, orderID).
		Update("source_order_financial_status", status).Error
}

// UpdateTransaction applies a partial update to a payout transaction
func (r *PayoutRepository) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.PayoutTransaction{}).Where("id = ?", id).Updates(updates).Error
}
