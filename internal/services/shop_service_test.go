package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shopify-integration-service/internal/encryption"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// MockCredentialStore is a mock implementation of CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) BuildSecretName(shopName string) string {
	return "shopify-" + shopName + "-credentials"
}

func (m *MockCredentialStore) GetCredentials(ctx context.Context, secretName string) (*models.Credentials, error) {
	args := m.Called(ctx, secretName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *MockCredentialStore) PutCredentials(ctx context.Context, secretName, shopName string, creds *models.Credentials) error {
	args := m.Called(ctx, secretName, shopName, creds)
	return args.Error(0)
}

func (m *MockCredentialStore) DeleteSecret(ctx context.Context, secretName string) error {
	args := m.Called(ctx, secretName)
	return args.Error(0)
}

func shopRequest() *ShopRequest {
	return &ShopRequest{
		Name:             " demo ",
		ShopURL:          "https://demo.myshopify.com",
		Enabled:          true,
		Company:          "Acme",
		SyncSalesInvoice: true,
		CashBankAccount:  "Shopify Bank - A",
	}
}

func TestShopServiceCreateEncryptsCredentials(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	enc, err := encryption.NewCredentialEncryptor("test-key")
	require.NoError(t, err)
	svc := NewShopService(store, nil, enc, "2024-01", quietLogger())

	req := shopRequest()
	req.Credentials = &models.Credentials{AccessToken: "shpat_abc", SharedSecret: "s3cret"}
	shop, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "demo", shop.Name)
	assert.Equal(t, models.AppTypeCustom, shop.AppType)

	stored, err := svc.Get(ctx, shop.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.EncryptedCredentials)
	assert.NotContains(t, stored.EncryptedCredentials, "shpat_abc")
	assert.Empty(t, stored.SecretReference)

	secret, err := svc.WebhookSecret(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	client, err := svc.ForShop(ctx, stored)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestShopServicePrefersSecretManager(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	enc, err := encryption.NewCredentialEncryptor("test-key")
	require.NoError(t, err)

	secrets := &MockCredentialStore{}
	creds := &models.Credentials{AccessToken: "shpat_abc", SharedSecret: "s3cret"}
	secrets.On("PutCredentials", mock.Anything, "shopify-demo-credentials", "demo", creds).Return(nil)
	secrets.On("GetCredentials", mock.Anything, "shopify-demo-credentials").Return(creds, nil)
	svc := NewShopService(store, secrets, enc, "2024-01", quietLogger())

	req := shopRequest()
	req.Credentials = creds
	shop, err := svc.Create(ctx, req)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, "shopify-demo-credentials", stored.SecretReference)
	assert.Empty(t, stored.EncryptedCredentials)

	loaded, err := svc.Credentials(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "shpat_abc", loaded.AccessToken)
	secrets.AssertExpectations(t)
}

func TestShopServiceDeleteRemovesSecret(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	secrets := &MockCredentialStore{}
	creds := &models.Credentials{AccessToken: "shpat_abc"}
	secrets.On("PutCredentials", mock.Anything, "shopify-demo-credentials", "demo", creds).Return(nil)
	secrets.On("DeleteSecret", mock.Anything, "shopify-demo-credentials").Return(nil).Once()
	svc := NewShopService(store, secrets, nil, "2024-01", quietLogger())

	req := shopRequest()
	req.Credentials = creds
	shop, err := svc.Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, shop.ID))
	secrets.AssertExpectations(t)

	_, err = svc.Get(ctx, shop.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestShopServiceDeleteKeepsShopWhenSecretFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	secrets := &MockCredentialStore{}
	creds := &models.Credentials{AccessToken: "shpat_abc"}
	secrets.On("PutCredentials", mock.Anything, "shopify-demo-credentials", "demo", creds).Return(nil)
	secrets.On("DeleteSecret", mock.Anything, "shopify-demo-credentials").Return(errors.New("permission denied"))
	svc := NewShopService(store, secrets, nil, "2024-01", quietLogger())

	req := shopRequest()
	req.Credentials = creds
	shop, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Error(t, svc.Delete(ctx, shop.ID))
	_, err = svc.Get(ctx, shop.ID)
	assert.NoError(t, err)
}

func TestShopServiceWithoutBackend(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewShopService(store, nil, nil, "2024-01", quietLogger())

	shop, err := svc.Create(ctx, shopRequest())
	require.NoError(t, err)

	err = svc.SetCredentials(ctx, shop, &models.Credentials{AccessToken: "x"})
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = svc.ForShop(ctx, shop)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestShopServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewShopService(newTestStore(t), nil, nil, "2024-01", quietLogger())

	req := shopRequest()
	req.AppType = "PUBLIC"
	_, err := svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidShop)

	req = shopRequest()
	req.ShopURL = "  "
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidShop)
}

func TestShopServiceResolveShop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewShopService(store, nil, nil, "2024-01", quietLogger())

	shop, err := svc.Create(ctx, shopRequest())
	require.NoError(t, err)

	found, err := svc.ResolveShop(ctx, "Demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, shop.ID, found.ID)

	_, err = svc.ResolveShop(ctx, "unknown.myshopify.com")
	assert.ErrorIs(t, err, ErrShopNotFound)

	req := shopRequest()
	req.Enabled = false
	_, err = svc.Update(ctx, shop.ID, req)
	require.NoError(t, err)

	_, err = svc.Enabled(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrShopDisabled)
}
