package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/clients/shopify"
	"shopify-integration-service/internal/encryption"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// CredentialStore keeps shop credentials outside the database
type CredentialStore interface {
	BuildSecretName(shopName string) string
	GetCredentials(ctx context.Context, secretName string) (*models.Credentials, error)
	PutCredentials(ctx context.Context, secretName, shopName string, creds *models.Credentials) error
	DeleteSecret(ctx context.Context, secretName string) error
}

// ClientFactory builds the platform client of a shop
type ClientFactory interface {
	ForShop(ctx context.Context, shop *models.Shop) (clients.PlatformClient, error)
}

// ShopService manages shop configuration and credentials
type ShopService struct {
	store      *repository.Store
	secrets    CredentialStore
	encryptor  *encryption.CredentialEncryptor
	apiVersion string
	rateBurst  int
	timeout    time.Duration
	logger     *logrus.Entry
}

// NewShopService creates a new shop service. Either credential backend may be
// nil; Secret Manager is preferred when both are set.
func NewShopService(store *repository.Store, secrets CredentialStore, encryptor *encryption.CredentialEncryptor, apiVersion string, logger *logrus.Logger) *ShopService {
	return &ShopService{
		store:      store,
		secrets:    secrets,
		encryptor:  encryptor,
		apiVersion: apiVersion,
		logger:     logger.WithField("component", "shop_service"),
	}
}

// SetClientLimits sets the burst and timeout of the Admin API clients it builds
func (s *ShopService) SetClientLimits(burst int, timeout time.Duration) {
	s.rateBurst = burst
	s.timeout = timeout
}

// ShopRequest carries every configurable field of a shop
type ShopRequest struct {
	Name       string         `json:"name" binding:"required"`
	ShopURL    string         `json:"shopUrl" binding:"required"`
	AppType    models.AppType `json:"appType"`
	APIVersion string         `json:"apiVersion"`
	Enabled    bool           `json:"enabled"`

	Company         string `json:"company"`
	Warehouse       string `json:"warehouse"`
	PriceList       string `json:"priceList"`
	CostCenter      string `json:"costCenter"`
	CustomerGroup   string `json:"customerGroup"`
	DefaultCustomer string `json:"defaultCustomer"`
	ItemGroup       string `json:"itemGroup"`

	SalesOrderSeries   string `json:"salesOrderSeries"`
	SalesInvoiceSeries string `json:"salesInvoiceSeries"`
	DeliveryNoteSeries string `json:"deliveryNoteSeries"`

	SyncSalesInvoice       bool `json:"syncSalesInvoice"`
	SyncDeliveryNote       bool `json:"syncDeliveryNote"`
	CreateVariants         bool `json:"createVariants"`
	UpdatePrice            bool `json:"updatePrice"`
	SyncPayouts            bool `json:"syncPayouts"`
	DeferInvoiceSubmission bool `json:"deferInvoiceSubmission"`

	CashBankAccount   string `json:"cashBankAccount"`
	ReceivableAccount string `json:"receivableAccount"`
	TaxAccount        string `json:"taxAccount"`
	ShippingAccount   string `json:"shippingAccount"`
	PaymentFeeAccount string `json:"paymentFeeAccount"`
	RefundAccount     string `json:"refundAccount"`

	Credentials *models.Credentials `json:"credentials,omitempty"`
}

func (req *ShopRequest) applyTo(shop *models.Shop) {
	shop.Name = strings.TrimSpace(req.Name)
	shop.ShopURL = strings.TrimSpace(req.ShopURL)
	shop.AppType = req.AppType
	if shop.AppType == "" {
		shop.AppType = models.AppTypeCustom
	}
	shop.APIVersion = req.APIVersion
	shop.Enabled = req.Enabled

	shop.Company = req.Company
	shop.Warehouse = req.Warehouse
	shop.PriceList = req.PriceList
	shop.CostCenter = req.CostCenter
	shop.CustomerGroup = req.CustomerGroup
	shop.DefaultCustomer = req.DefaultCustomer
	shop.ItemGroup = req.ItemGroup

	shop.SalesOrderSeries = req.SalesOrderSeries
	shop.SalesInvoiceSeries = req.SalesInvoiceSeries
	shop.DeliveryNoteSeries = req.DeliveryNoteSeries

	shop.SyncSalesInvoice = req.SyncSalesInvoice
	shop.SyncDeliveryNote = req.SyncDeliveryNote
	shop.CreateVariants = req.CreateVariants
	shop.UpdatePrice = req.UpdatePrice
	shop.SyncPayouts = req.SyncPayouts
	shop.DeferInvoiceSubmission = req.DeferInvoiceSubmission

	shop.CashBankAccount = req.CashBankAccount
	shop.ReceivableAccount = req.ReceivableAccount
	shop.TaxAccount = req.TaxAccount
	shop.ShippingAccount = req.ShippingAccount
	shop.PaymentFeeAccount = req.PaymentFeeAccount
	shop.RefundAccount = req.RefundAccount
}

func validateShop(shop *models.Shop) error {
	if shop.AppType != models.AppTypeCustom && shop.AppType != models.AppTypePrivate {
		return fmt.Errorf("%w: invalid app type %q", ErrInvalidShop, shop.AppType)
	}
	if shop.ShopURL == "" {
		return fmt.Errorf("%w: shop url is required", ErrInvalidShop)
	}
	return nil
}

// Create creates a shop, storing its credentials when given
func (s *ShopService) Create(ctx context.Context, req *ShopRequest) (*models.Shop, error) {
	shop := &models.Shop{}
	req.applyTo(shop)
	if err := validateShop(shop); err != nil {
		return nil, err
	}

	if err := s.store.Shops.Create(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	if req.Credentials != nil {
		if err := s.SetCredentials(ctx, shop, req.Credentials); err != nil {
			return nil, err
		}
	}

	s.logger.WithField("shop", shop.Name).Info("created shop")
	return shop, nil
}

// Get retrieves a shop by ID
func (s *ShopService) Get(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return s.store.Shops.GetByID(ctx, id)
}

// List retrieves every shop
func (s *ShopService) List(ctx context.Context) ([]models.Shop, error) {
	return s.store.Shops.List(ctx)
}

// Update replaces a shop's configuration. Credentials are only replaced when given.
func (s *ShopService) Update(ctx context.Context, id uuid.UUID, req *ShopRequest) (*models.Shop, error) {
	shop, err := s.store.Shops.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.applyTo(shop)
	if err := validateShop(shop); err != nil {
		return nil, err
	}
	if err := s.store.Shops.Update(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	if req.Credentials != nil {
		if err := s.SetCredentials(ctx, shop, req.Credentials); err != nil {
			return nil, err
		}
	}
	return shop, nil
}

// Delete removes a shop and the Secret Manager secret holding its credentials
func (s *ShopService) Delete(ctx context.Context, id uuid.UUID) error {
	shop, err := s.store.Shops.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if shop.SecretReference != "" && s.secrets != nil {
		if err := s.secrets.DeleteSecret(ctx, shop.SecretReference); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}
	}
	if err := s.store.Shops.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	s.logger.WithField("shop", shop.Name).Info("deleted shop")
	return nil
}

// SetCredentials stores credentials in Secret Manager, else encrypted in the row
func (s *ShopService) SetCredentials(ctx context.Context, shop *models.Shop, creds *models.Credentials) error {
	var reference, encrypted string

	switch {
	case s.secrets != nil:
		reference = s.secrets.BuildSecretName(shop.Name)
		if err := s.secrets.PutCredentials(ctx, reference, shop.Name, creds); err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}
	case s.encryptor != nil:
		var err error
		if encrypted, err = s.encryptor.Encrypt(creds); err != nil {
			return fmt.Errorf("failed to encrypt credentials: %w", err)
		}
	default:
		return ErrNoCredentials
	}

	if err := s.store.Shops.UpdateCredentials(ctx, shop.ID, reference, encrypted); err != nil {
		return err
	}
	shop.SecretReference = reference
	shop.EncryptedCredentials = encrypted

	s.logger.WithFields(logrus.Fields{
		"shop":     shop.Name,
		"token":    encryption.MaskSecret(creds.Token(shop.AppType)),
		"external": reference != "",
	}).Info("updated shop credentials")
	return nil
}

// Credentials loads the stored credentials of a shop
func (s *ShopService) Credentials(ctx context.Context, shop *models.Shop) (*models.Credentials, error) {
	switch {
	case shop.SecretReference != "" && s.secrets != nil:
		return s.secrets.GetCredentials(ctx, shop.SecretReference)
	case shop.EncryptedCredentials != "" && s.encryptor != nil:
		return s.encryptor.Decrypt(shop.EncryptedCredentials)
	}
	return nil, ErrNoCredentials
}

// WebhookSecret returns the shared secret webhooks are signed with
func (s *ShopService) WebhookSecret(ctx context.Context, shop *models.Shop) (string, error) {
	creds, err := s.Credentials(ctx, shop)
	if err != nil {
		return "", err
	}
	return creds.SharedSecret, nil
}

// ForShop builds the Admin API client of a shop
func (s *ShopService) ForShop(ctx context.Context, shop *models.Shop) (clients.PlatformClient, error) {
	creds, err := s.Credentials(ctx, shop)
	if err != nil {
		return nil, err
	}

	version := shop.APIVersion
	if version == "" {
		version = s.apiVersion
	}
	return shopify.NewClient(shopify.Config{
		ShopURL:     shop.ShopURL,
		AccessToken: creds.Token(shop.AppType),
		APIVersion:  version,
		Burst:       s.rateBurst,
		Timeout:     s.timeout,
	}), nil
}

// ResolveShop finds the enabled shop a webhook domain belongs to
func (s *ShopService) ResolveShop(ctx context.Context, domain string) (*models.Shop, error) {
	shop, err := s.store.Shops.FindEnabledByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if !shop.Enabled {
		return nil, ErrShopDisabled
	}
	return shop, nil
}

// Enabled loads a shop by id and rejects disabled shops
func (s *ShopService) Enabled(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	shop, err := s.store.Shops.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	if !shop.Enabled {
		return nil, ErrShopDisabled
	}
	return shop, nil
}
