package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

func newTestSyncService(t *testing.T, client *MockPlatformClient) (*SyncService, *repository.Store, *models.Shop) {
	t.Helper()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	shops := NewShopService(store, nil, nil, "2024-01", quietLogger())
	logs := NewLogService(store.Logs, nil, quietLogger())
	svc := NewSyncService(store, shops, staticClients{client: client}, logs, quietLogger())
	return svc, store, shop
}

func TestSyncProducts(t *testing.T) {
	ctx := context.Background()
	client := &MockPlatformClient{}
	client.On("ListProducts", mock.Anything, mock.MatchedBy(func(opts *clients.ListOptions) bool {
		return opts.Status == "active"
	})).Return([]clients.Product{*shirtProduct()}, nil)
	svc, store, shop := newTestSyncService(t, client)

	result, err := svc.SyncProducts(ctx, shop.ID, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Failed)

	exists, err := store.Items.Exists(ctx, "71")
	require.NoError(t, err)
	assert.True(t, exists)

	logs, _, err := store.Logs.List(ctx, repository.LogListOptions{Method: MethodProductSync})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSuccess, logs[0].Status)
	assert.Equal(t, "imported 1 products", logs[0].Message)
	assert.Equal(t, "admin@example.com", logs[0].Principal)
}

func TestSyncPayoutsListFailure(t *testing.T) {
	ctx := context.Background()
	client := &MockPlatformClient{}
	client.On("ListPayouts", mock.Anything, mock.Anything).Return(nil, &clients.APIError{StatusCode: 503, Body: "unavailable"})
	svc, store, shop := newTestSyncService(t, client)

	_, err := svc.SyncPayouts(ctx, shop.ID, nil, "scheduler")
	require.Error(t, err)

	logs, _, err := store.Logs.List(ctx, repository.LogListOptions{Method: MethodPayoutSync})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusError, logs[0].Status)

	reloaded, err := store.Shops.GetByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastSyncAt)
}

func TestSyncServiceRejectsDisabledShop(t *testing.T) {
	ctx := context.Background()
	svc, store, shop := newTestSyncService(t, &MockPlatformClient{})
	shop.Enabled = false
	require.NoError(t, store.Shops.Update(ctx, shop))

	_, err := svc.SyncProducts(ctx, shop.ID, "admin")
	assert.ErrorIs(t, err, ErrShopDisabled)
}
