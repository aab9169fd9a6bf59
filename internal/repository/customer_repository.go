package repository

import (
	"context"

	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// CustomerRepository handles database operations for customers and their
// addresses and contacts
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create creates a customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// FindByShopifyID finds the customer linked to a Shopify customer id
func (r *CustomerRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*models.Customer, error) {
	if shopifyID == "" {
		return nil, nil
	}
	return findOne[models.Customer](r.db.WithContext(ctx).Where("shopify_customer_id = ?", shopifyID))
}

// FindByName finds a customer by its unique name
func (r *CustomerRepository) FindByName(ctx context.Context, name string) (*models.Customer, error) {
	return findOne[models.Customer](r.db.WithContext(ctx).Where("name = ?", name))
}

// AddressExists reports whether an address name is taken
func (r *CustomerRepository) AddressExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Address{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// CreateAddress creates an address
func (r *CustomerRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// ListAddresses retrieves the addresses of a customer
func (r *CustomerRepository) ListAddresses(ctx context.Context, customer string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).Where("customer = ?", customer).Order("created_at ASC").Find(&addresses).Error
	return addresses, err
}

// CreateContact creates a contact
func (r *CustomerRepository) CreateContact(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// FindContact finds the contact of a customer
func (r *CustomerRepository) FindContact(ctx context.Context, customer string) (*models.Contact, error) {
	return findOne[models.Contact](r.db.WithContext(ctx).Where("customer = ?", customer))
}
