package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so a service can run a set of writes in one
// database transaction
type Store struct {
	db        *gorm.DB
	Shops     *ShopRepository
	Logs      *IntegrationLogRepository
	Series    *SeriesRepository
	Items     *ItemRepository
	Customers *CustomerRepository
	Documents *DocumentRepository
	Payouts   *PayoutRepository
	Accounts  *AccountRepository
}

// NewStore creates a store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Shops:     NewShopRepository(db),
		Logs:      NewIntegrationLogRepository(db),
		Series:    NewSeriesRepository(db),
		Items:     NewItemRepository(db),
		Customers: NewCustomerRepository(db),
		Documents: NewDocumentRepository(db),
		Payouts:   NewPayoutRepository(db),
		Accounts:  NewAccountRepository(db),
	}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a store bound to a single transaction. Any error
// returned by fn rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
