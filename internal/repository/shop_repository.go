package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// ShopRepository handles database operations for connected shops
type ShopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// Create creates a new shop
func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// GetByID retrieves a shop by ID
func (r *ShopRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return getOne[models.Shop](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByName retrieves a shop by its unique name
func (r *ShopRepository) GetByName(ctx context.Context, name string) (*models.Shop, error) {
	return getOne[models.Shop](r.db.WithContext(ctx).Where("name = ?", name))
}

// FindEnabledByDomain finds the enabled shop whose URL contains the webhook
// shop domain
func (r *ShopRepository) FindEnabledByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, nil
	}
	return findOne[models.Shop](r.db.WithContext(ctx).
		Where("enabled = ? AND LOWER(shop_url) LIKE ?", true, "%"+domain+"%").
		Order("created_at ASC"))
}

// List retrieves all shops
func (r *ShopRepository) List(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.WithContext(ctx).Order("name ASC").Find(&shops).Error
	return shops, err
}

// ListPayoutEnabled retrieves enabled shops that sync payouts
func (r *ShopRepository) ListPayoutEnabled(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND sync_payouts = ?", true, true).
		Order("name ASC").
		Find(&shops).Error
	return shops, err
}

// Update saves every field of a shop
func (r *ShopRepository) Update(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Save(shop).Error
}

// UpdateCredentials replaces where the shop's credentials are kept
func (r *ShopRepository) UpdateCredentials(ctx context.Context, id uuid.UUID, secretReference, encrypted string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"secret_reference":      secretReference,
			"encrypted_credentials": encrypted,
		}).Error
}

// UpdateLastSync moves the payout watermark
func (r *ShopRepository) UpdateLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", id).
		Update("last_sync_at", at).Error
}

// Delete deletes a shop
func (r *ShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Shop{}, "id = ?", id).Error
}
