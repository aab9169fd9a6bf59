package models

import (
	"strings"
	"time"
)

// AppType is the kind of Shopify app the shop credentials belong to
type AppType string

const (
	AppTypeCustom  AppType = "CUSTOM"
	AppTypePrivate AppType = "PRIVATE"
)

// Default document numbering series
const (
	DefaultSalesOrderSeries   = "SO-Shopify-"
	DefaultSalesInvoiceSeries = "SI-Shopify-"
	DefaultDeliveryNoteSeries = "DN-Shopify-"
	DefaultJournalEntrySeries = "JV-Shopify-"
)

// Shop is the configuration of one connected Shopify storefront
type Shop struct {
	Model
	Name       string  `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	ShopURL    string  `gorm:"type:varchar(500);not null" json:"shopUrl"`
	AppType    AppType `gorm:"type:varchar(20);not null" json:"appType"`
	APIVersion string  `gorm:"type:varchar(20)" json:"apiVersion,omitempty"`
	Enabled    bool    `json:"enabled"`

	// Credentials live either in GCP Secret Manager or encrypted in this row
	SecretReference      string `gorm:"type:varchar(500)" json:"-"`
	EncryptedCredentials string `gorm:"type:text" json:"-"`

	// ERP defaults
	Company         string `gorm:"type:varchar(255)" json:"company"`
	Warehouse       string `gorm:"type:varchar(255)" json:"warehouse"`
	PriceList       string `gorm:"type:varchar(255)" json:"priceList"`
	CostCenter      string `gorm:"type:varchar(255)" json:"costCenter"`
	CustomerGroup   string `gorm:"type:varchar(255)" json:"customerGroup"`
	DefaultCustomer string `gorm:"type:varchar(255)" json:"defaultCustomer,omitempty"`
	ItemGroup       string `gorm:"type:varchar(255)" json:"itemGroup"`

	// Numbering
	SalesOrderSeries   string `gorm:"type:varchar(100)" json:"salesOrderSeries,omitempty"`
	SalesInvoiceSeries string `gorm:"type:varchar(100)" json:"salesInvoiceSeries,omitempty"`
	DeliveryNoteSeries string `gorm:"type:varchar(100)" json:"deliveryNoteSeries,omitempty"`

	// Feature toggles
	SyncSalesInvoice       bool `json:"syncSalesInvoice"`
	SyncDeliveryNote       bool `json:"syncDeliveryNote"`
	CreateVariants         bool `json:"createVariants"`
	UpdatePrice            bool `json:"updatePrice"`
	SyncPayouts            bool `json:"syncPayouts"`
	DeferInvoiceSubmission bool `json:"deferInvoiceSubmission"`

	// Account mapping
	CashBankAccount   string `gorm:"type:varchar(255)" json:"cashBankAccount"`
	ReceivableAccount string `gorm:"type:varchar(255)" json:"receivableAccount"`
	TaxAccount        string `gorm:"type:varchar(255)" json:"taxAccount"`
	ShippingAccount   string `gorm:"type:varchar(255)" json:"shippingAccount"`
	PaymentFeeAccount string `gorm:"type:varchar(255)" json:"paymentFeeAccount"`
	RefundAccount     string `gorm:"type:varchar(255)" json:"refundAccount,omitempty"`

	// Payout watermark
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// TableName specifies the table name for Shop
func (Shop) TableName() string {
	return "shopify_shops"
}

// OrderSeries returns the sales order numbering prefix
func (s *Shop) OrderSeries() string {
	if s.SalesOrderSeries != "" {
		return s.SalesOrderSeries
	}
	return DefaultSalesOrderSeries
}

// InvoiceSeries returns the sales invoice numbering prefix
func (s *Shop) InvoiceSeries() string {
	if s.SalesInvoiceSeries != "" {
		return s.SalesInvoiceSeries
	}
	return DefaultSalesInvoiceSeries
}

// DeliverySeries returns the delivery note numbering prefix
func (s *Shop) DeliverySeries() string {
	if s.DeliveryNoteSeries != "" {
		return s.DeliveryNoteSeries
	}
	return DefaultDeliveryNoteSeries
}

// MatchesDomain reports whether a webhook shop domain belongs to this shop
func (s *Shop) MatchesDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return domain != "" && strings.Contains(strings.ToLower(s.ShopURL), domain)
}

// Credentials are the Admin API credentials of a shop. They are never stored
// in plain text.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
	Password     string `json:"password,omitempty"`
	SharedSecret string `json:"shared_secret,omitempty"`
}

// Token returns the Admin API token. Private apps authenticate with their
// password.
func (c *Credentials) Token(appType AppType) string {
	if appType == AppTypePrivate && c.Password != "" {
		return c.Password
	}
	return c.AccessToken
}
