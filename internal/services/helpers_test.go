package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// MockPlatformClient is a mock implementation of clients.PlatformClient
type MockPlatformClient struct {
	mock.Mock
}

var _ clients.PlatformClient = (*MockPlatformClient)(nil)

func (m *MockPlatformClient) GetOrder(ctx context.Context, orderID string) (*clients.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Order), args.Error(1)
}

func (m *MockPlatformClient) ListOrders(ctx context.Context, opts *clients.ListOptions) ([]clients.Order, error) {
	args := m.Called(ctx, opts)
	orders, _ := args.Get(0).([]clients.Order)
	return orders, args.Error(1)
}

func (m *MockPlatformClient) ListRefunds(ctx context.Context, orderID string) ([]clients.Refund, error) {
	args := m.Called(ctx, orderID)
	refunds, _ := args.Get(0).([]clients.Refund)
	return refunds, args.Error(1)
}

func (m *MockPlatformClient) GetProduct(ctx context.Context, productID string) (*clients.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Product), args.Error(1)
}

func (m *MockPlatformClient) ListProducts(ctx context.Context, opts *clients.ListOptions) ([]clients.Product, error) {
	args := m.Called(ctx, opts)
	products, _ := args.Get(0).([]clients.Product)
	return products, args.Error(1)
}

func (m *MockPlatformClient) GetVariant(ctx context.Context, variantID string) (*clients.Variant, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Variant), args.Error(1)
}

func (m *MockPlatformClient) GetPayout(ctx context.Context, payoutID string) (*clients.Payout, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.Payout), args.Error(1)
}

func (m *MockPlatformClient) ListPayouts(ctx context.Context, opts *clients.ListOptions) ([]clients.Payout, error) {
	args := m.Called(ctx, opts)
	payouts, _ := args.Get(0).([]clients.Payout)
	return payouts, args.Error(1)
}

func (m *MockPlatformClient) ListPayoutTransactions(ctx context.Context, payoutID string) ([]clients.Transaction, error) {
	args := m.Called(ctx, payoutID)
	txns, _ := args.Get(0).([]clients.Transaction)
	return txns, args.Error(1)
}

// staticClients hands the same client to every shop
type staticClients struct {
	client clients.PlatformClient
}

func (f staticClients) ForShop(context.Context, *models.Shop) (clients.PlatformClient, error) {
	return f.client, nil
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return repository.NewStore(db)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// createTestShop stores a shop with every account mapped and the ledger
// accounts the journal entries post to
func createTestShop(t *testing.T, store *repository.Store) *models.Shop {
	t.Helper()
	ctx := context.Background()

	shop := &models.Shop{
		Name:              "demo",
		ShopURL:           "https://demo.myshopify.com",
		AppType:           models.AppTypeCustom,
		Enabled:           true,
		Company:           "Acme",
		Warehouse:         "Stores - A",
		CostCenter:        "Main - A",
		CustomerGroup:     "Individual",
		SyncSalesInvoice:  true,
		SyncDeliveryNote:  true,
		SyncPayouts:       true,
		CashBankAccount:   "Shopify Bank - A",
		ReceivableAccount: "Debtors - A",
		TaxAccount:        "Output Tax - A",
		ShippingAccount:   "Freight - A",
		PaymentFeeAccount: "Payment Fees - A",
	}
	require.NoError(t, store.Shops.Create(ctx, shop))

	for _, acc := range []models.Account{
		{Name: "Shopify Bank - A", Company: "Acme", RootType: models.RootAsset, AccountType: models.AccountTypeBank},
		{Name: "Debtors - A", Company: "Acme", RootType: models.RootAsset, AccountType: models.AccountTypeReceivable},
		{Name: "Payment Fees - A", Company: "Acme", RootType: models.RootExpense},
	} {
		acc := acc
		require.NoError(t, store.Accounts.Create(ctx, &acc))
	}
	return shop
}

func newSyncContext(shop *models.Shop, client clients.PlatformClient, store *repository.Store) *SyncContext {
	return &SyncContext{
		Shop:   shop,
		Client: client,
		Store:  store,
		Logger: logrus.NewEntry(quietLogger()),
		Clock:  func() time.Time { return testNow },
	}
}

// createTestItem stores a plain item for a platform variant so order lines
// resolve without a catalog fetch
func createTestItem(t *testing.T, store *repository.Store, code, productID, variantID string) {
	t.Helper()
	require.NoError(t, store.Items.Create(context.Background(), &models.Item{
		ItemCode:         code,
		ItemName:         code,
		ShopifyProductID: productID,
		ShopifyVariantID: variantID,
		StockUOM:         models.DefaultStockUOM,
		IsStockItem:      true,
	}))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// paidOrder is order 555: customer 9 buys two of variant 77 at 10, paid and
// shipped in fulfillment 321
func paidOrder() *clients.Order {
	return &clients.Order{
		ID:              "555",
		OrderNumber:     "1001",
		Name:            "#1001",
		Currency:        "USD",
		FinancialStatus: clients.FinancialStatusPaid,
		Customer: &clients.Customer{
			ID:        "9",
			Email:     "ada@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
		},
		LineItems: []clients.LineItem{{
			ID:        "l1",
			ProductID: "7",
			VariantID: "77",
			SKU:       "MUG-RED",
			Title:     "Mug",
			Quantity:  2,
			Price:     dec("10"),
		}},
		Fulfillments: []clients.Fulfillment{{
			ID:        "321",
			OrderID:   "555",
			CreatedAt: testNow,
			LineItems: []clients.LineItem{{ID: "l1", ProductID: "7", VariantID: "77", SKU: "MUG-RED", Title: "Mug", Quantity: 2}},
		}},
		CreatedAt: testNow.Add(-time.Hour),
	}
}
