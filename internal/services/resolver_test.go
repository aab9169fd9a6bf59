package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
)

func TestCustomerAddressTitleCollision(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	r := NewCustomerResolver(newSyncContext(shop, &MockPlatformClient{}, store))

	customer := func(id string) *clients.Customer {
		return &clients.Customer{
			ID:        id,
			FirstName: "John",
			LastName:  "Doe",
			Addresses: []clients.Address{{ID: "a" + id, Address1: "1 Main St", City: "Springfield"}},
		}
	}

	first, err := r.ResolveOrCreate(ctx, customer("1"))
	require.NoError(t, err)
	second, err := r.ResolveOrCreate(ctx, customer("2"))
	require.NoError(t, err)
	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)

	firstAddrs, err := store.Customers.ListAddresses(ctx, "1")
	require.NoError(t, err)
	require.Len(t, firstAddrs, 1)
	assert.Equal(t, "John Doe", firstAddrs[0].Title)
	assert.Equal(t, "John Doe-Billing", firstAddrs[0].Name)

	secondAddrs, err := store.Customers.ListAddresses(ctx, "2")
	require.NoError(t, err)
	require.Len(t, secondAddrs, 1)
	assert.Equal(t, "John Doe-0", secondAddrs[0].Title)
	assert.Equal(t, "John Doe-0-Billing", secondAddrs[0].Name)

	again, err := r.ResolveOrCreate(ctx, customer("1"))
	require.NoError(t, err)
	assert.Equal(t, "1", again)
}

func TestCustomerContactAndAddressDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	r := NewCustomerResolver(newSyncContext(shop, &MockPlatformClient{}, store))

	name, err := r.ResolveOrCreate(ctx, &clients.Customer{
		ID:             "42",
		Email:          "grace@example.com",
		DefaultAddress: &clients.Address{ID: "d1", Phone: "555-0100"},
	})
	require.NoError(t, err)

	record, err := store.Customers.FindByShopifyID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", record.CustomerName)
	assert.Equal(t, "Individual", record.CustomerGroup)

	addrs, err := store.Customers.ListAddresses(ctx, name)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "Address 1", addrs[0].AddressLine1)
	assert.Equal(t, "City", addrs[0].City)

	contact, err := store.Customers.FindContact(ctx, name)
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "555-0100", contact.Phone)
	assert.Equal(t, models.ContactStatusPassive, contact.Status)
	assert.True(t, contact.Unsubscribed)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", DisplayName(&clients.Customer{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "a@x"}))
	assert.Equal(t, "a@x", DisplayName(&clients.Customer{ID: "1", Email: "a@x"}))
	assert.Equal(t, "1", DisplayName(&clients.Customer{ID: "1"}))
}

func shirtProduct() *clients.Product {
	return &clients.Product{
		ID:          "7",
		Title:       "Shirt ",
		Vendor:      "Acme Textiles",
		ProductType: "Apparel",
		Status:      "active",
		Options:     []clients.Option{{ID: "o1", Name: "Size", Position: 1, Values: []string{"S", "M"}}},
		Variants: []clients.Variant{
			{ID: "71", ProductID: "7", Title: "S", SKU: "SHIRT-S", Price: dec("12"), Weight: dec("0.2"), WeightUnit: "kg", Option1: "S"},
			{ID: "72", ProductID: "7", Title: "M", SKU: "SHIRT-M", Price: dec("13"), Weight: dec("0.25"), WeightUnit: "kg", Option1: "M"},
		},
	}
}

func TestMakeItemWithTemplate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	shop.CreateVariants = true
	r := NewItemResolver(newSyncContext(shop, &MockPlatformClient{}, store))

	require.NoError(t, r.MakeItem(ctx, shirtProduct()))

	template, err := store.Items.GetByCode(ctx, "7")
	require.NoError(t, err)
	assert.True(t, template.HasVariants)
	assert.Equal(t, "Shirt", template.ItemName)
	assert.Equal(t, "Apparel", template.MarketplaceItemGroup)

	variants, err := store.Items.ListVariants(ctx, "7")
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "71", variants[0].ItemCode)
	assert.Equal(t, "Shirt - S", variants[0].ItemName)
	assert.Equal(t, "Kg", variants[0].WeightUOM)
	require.Len(t, variants[0].Attributes, 1)
	assert.Equal(t, "Size", variants[0].Attributes[0].Attribute)
	assert.Equal(t, "S", variants[0].Attributes[0].AttributeValue)

	attr, err := store.Items.GetAttribute(ctx, "Size")
	require.NoError(t, err)
	assert.Len(t, attr.Values, 2)

	require.NoError(t, r.MakeItem(ctx, shirtProduct()), "importing twice keeps the items")
	variants, err = store.Items.ListVariants(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, variants, 2)
}

func TestMakeItemWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	shop.UpdatePrice = true
	shop.PriceList = "Standard Selling"
	r := NewItemResolver(newSyncContext(shop, &MockPlatformClient{}, store))

	require.NoError(t, r.MakeItem(ctx, shirtProduct()))

	exists, err := store.Items.Exists(ctx, "7")
	require.NoError(t, err)
	assert.False(t, exists, "no template without variant creation")

	item, err := store.Items.GetByCode(ctx, "72")
	require.NoError(t, err)
	assert.Equal(t, "Shirt - M", item.ItemName)
	assert.Empty(t, item.VariantOf)

	price, err := store.Items.GetPrice(ctx, "72", "Standard Selling")
	require.NoError(t, err)
	assert.True(t, dec("13").Equal(price.PriceListRate))
}

func TestResolveOrCreateFetchesMissingProduct(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)

	client := &MockPlatformClient{}
	client.On("GetProduct", mock.Anything, "7").Return(shirtProduct(), nil).Once()
	r := NewItemResolver(newSyncContext(shop, client, store))

	code, err := r.ResolveOrCreate(ctx, clients.LineItem{ID: "l1", ProductID: "7", VariantID: "71", SKU: "SHIRT-S", Title: "Shirt"})
	require.NoError(t, err)
	assert.Equal(t, "71", code)

	code, err = r.ResolveOrCreate(ctx, clients.LineItem{ID: "l2", ProductID: "7", VariantID: "72", Title: "Shirt"})
	require.NoError(t, err)
	assert.Equal(t, "72", code)
	client.AssertExpectations(t)
}

func TestResolveOrCreatePrefersAlias(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "LEGACY-MUG", "", "")
	createTestItem(t, store, "MUG", "7", "77")
	require.NoError(t, store.Items.CreateAlias(ctx, &models.ItemAlias{ShopID: shop.ID, Alias: "77", ItemCode: "LEGACY-MUG"}))

	r := NewItemResolver(newSyncContext(shop, &MockPlatformClient{}, store))
	code, err := r.ResolveOrCreate(ctx, clients.LineItem{ID: "l1", ProductID: "7", VariantID: "77"})
	require.NoError(t, err)
	assert.Equal(t, "LEGACY-MUG", code)
}

func TestResolveOrCreateFallsBackToTitle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)

	client := &MockPlatformClient{}
	client.On("ListProducts", mock.Anything, mock.MatchedBy(func(opts *clients.ListOptions) bool {
		return opts.Title == "Gift wrap"
	})).Return(nil, nil)
	r := NewItemResolver(newSyncContext(shop, client, store))

	code, err := r.ResolveOrCreate(ctx, clients.LineItem{ID: "l1", Title: " Gift wrap "})
	require.NoError(t, err)
	assert.Equal(t, "Gift wrap", code)

	item, err := store.Items.GetByCode(ctx, "Gift wrap")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultItemGroup, item.ItemGroup)

	_, err = r.ResolveOrCreate(ctx, clients.LineItem{ID: "l2"})
	assert.Error(t, err)
}
