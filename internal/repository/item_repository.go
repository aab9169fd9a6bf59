package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shopify-integration-service/internal/models"
)

// ItemRepository handles database operations for the item master
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create creates an item with its variant attributes
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByCode retrieves an item by item code
func (r *ItemRepository) GetByCode(ctx context.Context, code string) (*models.Item, error) {
	return getOne[models.Item](r.db.WithContext(ctx).Preload("Attributes").Where("item_code = ?", code))
}

// Exists reports whether an item code is taken
func (r *ItemRepository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Where("item_code = ?", code).Count(&count).Error
	return count > 0, err
}

// FindByAlias resolves a shop-specific alias to its item
func (r *ItemRepository) FindByAlias(ctx context.Context, shopID uuid.UUID, alias string) (*models.Item, error) {
	if alias == "" {
		return nil, nil
	}
	a, err := findOne[models.ItemAlias](r.db.WithContext(ctx).Where("shop_id = ? AND alias = ?", shopID, alias))
	if err != nil || a == nil {
		return nil, err
	}
	return findOne[models.Item](r.db.WithContext(ctx).Where("item_code = ?", a.ItemCode))
}

// FindBySKU finds an item by its Shopify SKU
func (r *ItemRepository) FindBySKU(ctx context.Context, sku string) (*models.Item, error) {
	if sku == "" {
		return nil, nil
	}
	return findOne[models.Item](r.db.WithContext(ctx).Where("shopify_sku = ?", sku))
}

// FindByVariantID finds the item created for a Shopify variant
func (r *ItemRepository) FindByVariantID(ctx context.Context, variantID string) (*models.Item, error) {
	if variantID == "" {
		return nil, nil
	}
	return findOne[models.Item](r.db.WithContext(ctx).Where("shopify_variant_id = ?", variantID))
}

// FindByProductID finds the item created for a Shopify product, preferring a
// non-template item over a variant template
func (r *ItemRepository) FindByProductID(ctx context.Context, productID string) (*models.Item, error) {
	if productID == "" {
		return nil, nil
	}
	return findOne[models.Item](r.db.WithContext(ctx).
		Where("shopify_product_id = ?", productID).
		Order("has_variants ASC").
		Order("created_at ASC"))
}

// FindByName finds an item by exact item name
func (r *ItemRepository) FindByName(ctx context.Context, name string) (*models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return findOne[models.Item](r.db.WithContext(ctx).Where("item_name = ? AND has_variants = ?", name, false))
}

// CreateAlias maps an alias to an item code for a shop
func (r *ItemRepository) CreateAlias(ctx context.Context, alias *models.ItemAlias) error {
	return r.db.WithContext(ctx).Create(alias).Error
}

// EnsureItemGroup creates the item group when missing
func (r *ItemRepository) EnsureItemGroup(ctx context.Context, name, parent string) error {
	group := models.ItemGroup{Name: name, ParentGroup: parent}
	return r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&group).Error
}

// ItemGroupExists reports whether an item group name is taken
func (r *ItemRepository) ItemGroupExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ItemGroup{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// EnsureSupplier creates the supplier and its group when missing
func (r *ItemRepository) EnsureSupplier(ctx context.Context, name, group string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("name = ?", group).FirstOrCreate(&models.SupplierGroup{Name: group}).Error; err != nil {
		return err
	}
	supplier := models.Supplier{Name: name, SupplierGroup: group}
	return db.Where("name = ?", name).FirstOrCreate(&supplier).Error
}

// EnsureAttribute creates the attribute when missing and appends any values
// it does not already hold, compared case-insensitively
func (r *ItemRepository) EnsureAttribute(ctx context.Context, name string, values []string) error {
	db := r.db.WithContext(ctx)

	attr := models.ItemAttribute{AttributeName: name}
	if err := db.Where("attribute_name = ?", name).FirstOrCreate(&attr).Error; err != nil {
		return err
	}

	var existing []models.ItemAttributeValue
	if err := db.Where("item_attribute_id = ?", attr.ID).Find(&existing).Error; err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v.AttributeValue)] = true
	}

	for _, value := range values {
		key := strings.ToLower(value)
		if value == "" || seen[key] {
			continue
		}
		seen[key] = true
		if err := db.Create(&models.ItemAttributeValue{
			ItemAttributeID: attr.ID,
			AttributeValue:  value,
			Abbr:            value,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetAttribute retrieves an attribute with its values
func (r *ItemRepository) GetAttribute(ctx context.Context, name string) (*models.ItemAttribute, error) {
	return getOne[models.ItemAttribute](r.db.WithContext(ctx).Preload("Values").Where("attribute_name = ?", name))
}

// UpsertPrice sets the rate of an item on a price list
func (r *ItemRepository) UpsertPrice(ctx context.Context, itemCode, priceList string, rate decimal.Decimal) error {
	price := models.ItemPrice{ItemCode: itemCode, PriceList: priceList, PriceListRate: rate}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_code"}, {Name: "price_list"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_list_rate", "updated_at"}),
	}).Create(&price).Error
}

// GetPrice retrieves the price of an item on a price list
func (r *ItemRepository) GetPrice(ctx context.Context, itemCode, priceList string) (*models.ItemPrice, error) {
	return getOne[models.ItemPrice](r.db.WithContext(ctx).Where("item_code = ? AND price_list = ?", itemCode, priceList))
}

// ListVariants retrieves the variants of a template item
func (r *ItemRepository) ListVariants(ctx context.Context, templateCode string) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Preload("Attributes").
		Where("variant_of = ?", templateCode).
		Order("item_code ASC").
		Find(&items).Error
	return items, err
}

// ItemListOptions contains options for listing items
type ItemListOptions struct {
	ShopID *uuid.UUID
	Limit  int
	Offset int
}

// List retrieves items with pagination
func (r *ItemRepository) List(ctx context.Context, opts ItemListOptions) ([]models.Item, int64, error) {
	var items []models.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Item{})
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

	if err := query.Order("item_code ASC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
