package repository

import (
	"context"

	"gorm.io/gorm"
	"shopify-integration-service/internal/models"
)

// AccountRepository handles database operations for ledger accounts and
// journal entries
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates an account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByName retrieves an account by name
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	return getOne[models.Account](r.db.WithContext(ctx).Where("name = ?", name))
}

// CreateJournalEntry creates a journal entry with its rows
func (r *AccountRepository) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetJournalEntry retrieves a journal entry by name
func (r *AccountRepository) GetJournalEntry(ctx context.Context, name string) (*models.JournalEntry, error) {
	return getOne[models.JournalEntry](r.db.WithContext(ctx).
		Preload("Accounts", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("name = ?", name))
}
