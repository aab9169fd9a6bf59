package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// DocumentRepository handles database operations for sales orders, sales
// invoices and delivery notes. Lookups by Shopify identity ignore cancelled
// documents.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Preload("Taxes", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") })
}

// byOrder matches a Shopify order by id, or by order number when one is given
func byOrder(db *gorm.DB, shopID uuid.UUID, orderID, orderNumber string) *gorm.DB {
	db = db.Where("shop_id = ? AND doc_status < ?", shopID, models.DocStatusCancelled)
	if orderNumber != "" {
		return db.Where("(shopify_order_id = ? OR shopify_order_number = ?)", orderID, orderNumber)
	}
	return db.Where("shopify_order_id = ?", orderID)
}

// CreateSalesOrder creates a sales order with its items and taxes
func (r *DocumentRepository) CreateSalesOrder(ctx context.Context, order *models.SalesOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindSalesOrder finds the live sales order of a Shopify order
func (r *DocumentRepository) FindSalesOrder(ctx context.Context, shopID uuid.UUID, orderID, orderNumber string) (*models.SalesOrder, error) {
	return findOne[models.SalesOrder](byOrder(preloadLines(r.db.WithContext(ctx)), shopID, orderID, orderNumber).
		Order("created_at DESC"))
}

// GetSalesOrder retrieves a sales order by name
func (r *DocumentRepository) GetSalesOrder(ctx context.Context, name string) (*models.SalesOrder, error) {
	return getOne[models.SalesOrder](preloadLines(r.db.WithContext(ctx)).Where("name = ?", name))
}

// UpdateSalesOrder applies a partial update to a sales order
func (r *DocumentRepository) UpdateSalesOrder(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.SalesOrder{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateSalesOrderItem applies a partial update to a sales order line
func (r *DocumentRepository) UpdateSalesOrderItem(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.SalesOrderItem{}).Where("id = ?", id).Updates(updates).Error
}

// CreateSalesInvoice creates a sales invoice with its items and taxes
func (r *DocumentRepository) CreateSalesInvoice(ctx context.Context, invoice *models.SalesInvoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// FindSalesInvoice finds the live, non-return invoice of a Shopify order
func (r *DocumentRepository) FindSalesInvoice(ctx context.Context, shopID uuid.UUID, orderID, orderNumber string) (*models.SalesInvoice, error) {
	return findOne[models.SalesInvoice](byOrder(preloadLines(r.db.WithContext(ctx)), shopID, orderID, orderNumber).
		Where("is_return = ?", false).
		Order("created_at DESC"))
}

// GetSalesInvoice retrieves a sales invoice by name
func (r *DocumentRepository) GetSalesInvoice(ctx context.Context, name string) (*models.SalesInvoice, error) {
	return getOne[models.SalesInvoice](preloadLines(r.db.WithContext(ctx)).Where("name = ?", name))
}

// ListReturns retrieves the live return invoices issued against an invoice
func (r *DocumentRepository) ListReturns(ctx context.Context, invoiceName string) ([]models.SalesInvoice, error) {
	var returns []models.SalesInvoice
	err := preloadLines(r.db.WithContext(ctx)).
		Where("return_against = ? AND is_return = ? AND doc_status < ?", invoiceName, true, models.DocStatusCancelled).
		Order("created_at ASC").
		Find(&returns).Error
	return returns, err
}

// ListSalesInvoices retrieves every live invoice of a Shopify order, returns included
func (r *DocumentRepository) ListSalesInvoices(ctx context.Context, shopID uuid.UUID, orderID string) ([]models.SalesInvoice, error) {
	var invoices []models.SalesInvoice
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND shopify_order_id = ? AND doc_status < ?", shopID, orderID, models.DocStatusCancelled).
		Order("created_at ASC").
		Find(&invoices).Error
	return invoices, err
}

// UpdateSalesInvoice applies a partial update to a sales invoice
func (r *DocumentRepository) UpdateSalesInvoice(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.SalesInvoice{}).Where("id = ?", id).Updates(updates).Error
}

// AddInvoiceTaxes appends tax and charge rows to an existing invoice
func (r *DocumentRepository) AddInvoiceTaxes(ctx context.Context, invoice *models.SalesInvoice, taxes []models.TaxCharge) error {
	if len(taxes) == 0 {
		return nil
	}
	for i := range taxes {
		taxes[i].ParentID = invoice.ID
		taxes[i].ParentType = models.ParentSalesInvoice
	}
	return r.db.WithContext(ctx).Create(&taxes).Error
}

// CreateDeliveryNote creates a delivery note with its items
func (r *DocumentRepository) CreateDeliveryNote(ctx context.Context, note *models.DeliveryNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// FindDeliveryNote finds the live delivery note of a Shopify fulfillment
func (r *DocumentRepository) FindDeliveryNote(ctx context.Context, shopID uuid.UUID, fulfillmentID string) (*models.DeliveryNote, error) {
	return findOne[models.DeliveryNote](r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("shop_id = ? AND shopify_fulfillment_id = ? AND doc_status < ?", shopID, fulfillmentID, models.DocStatusCancelled))
}

// ListDeliveryNotes retrieves every live delivery note of a Shopify order
func (r *DocumentRepository) ListDeliveryNotes(ctx context.Context, shopID uuid.UUID, orderID string) ([]models.DeliveryNote, error) {
	var notes []models.DeliveryNote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("shop_id = ? AND shopify_order_id = ? AND doc_status < ?", shopID, orderID, models.DocStatusCancelled).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

// UpdateDeliveryNote applies a partial update to a delivery note
func (r *DocumentRepository) UpdateDeliveryNote(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.DeliveryNote{}).Where("id = ?", id).Updates(updates).Error
}
