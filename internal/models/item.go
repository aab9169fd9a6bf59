package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item master defaults
const (
	DefaultStockUOM      = "Nos"
	DefaultItemGroup     = "All Item Groups"
	ShopifySupplierGroup = "Shopify Supplier"
	DefaultTitleOption   = "Default Title"
)

// Item is the ERP item master. Template items carry HasVariants and their
// variants point back through VariantOf.
type Item struct {
	Model
	ItemCode             string          `gorm:"type:varchar(140);not null;uniqueIndex" json:"itemCode"`
	ItemName             string          `gorm:"type:varchar(255);index" json:"itemName"`
	Description          string          `gorm:"type:text" json:"description,omitempty"`
	ShopID               *uuid.UUID      `gorm:"type:uuid;index" json:"shopId,omitempty"`
	ShopifyProductID     string          `gorm:"type:varchar(64);index" json:"shopifyProductId,omitempty"`
	ShopifyVariantID     string          `gorm:"type:varchar(64);index" json:"shopifyVariantId,omitempty"`
	ShopifySKU           string          `gorm:"type:varchar(255);index" json:"shopifySku,omitempty"`
	ItemGroup            string          `gorm:"type:varchar(255)" json:"itemGroup"`
	MarketplaceItemGroup string          `gorm:"type:varchar(255)" json:"marketplaceItemGroup,omitempty"`
	StockUOM             string          `gorm:"type:varchar(50)" json:"stockUom"`
	WeightUOM            string          `gorm:"type:varchar(50)" json:"weightUom,omitempty"`
	WeightPerUnit        decimal.Decimal `gorm:"type:numeric(18,6)" json:"weightPerUnit"`
	HasVariants          bool            `json:"hasVariants"`
	VariantOf            string          `gorm:"type:varchar(140);index" json:"variantOf,omitempty"`
	IsStockItem          bool            `json:"isStockItem"`
	DisabledOnShopify    bool            `json:"disabledOnShopify"`
	DefaultWarehouse     string          `gorm:"type:varchar(255)" json:"defaultWarehouse,omitempty"`
	DefaultSupplier      string          `gorm:"type:varchar(255)" json:"defaultSupplier,omitempty"`
	Image                string          `gorm:"type:text" json:"image,omitempty"`

	Attributes []ItemVariantAttribute `gorm:"foreignKey:ItemID" json:"attributes,omitempty"`
}

// TableName specifies the table name for Item
func (Item) TableName() string {
	return "items"
}

// ItemVariantAttribute records an attribute (and, for variants, its value) on an item
type ItemVariantAttribute struct {
	Model
	ItemID         uuid.UUID `gorm:"type:uuid;not null;index" json:"itemId"`
	Attribute      string    `gorm:"type:varchar(140);not null" json:"attribute"`
	AttributeValue string    `gorm:"type:varchar(140)" json:"attributeValue,omitempty"`
	VariantOf      string    `gorm:"type:varchar(140)" json:"variantOf,omitempty"`
}

// TableName specifies the table name for ItemVariantAttribute
func (ItemVariantAttribute) TableName() string {
	return "item_variant_attributes"
}

// ItemAttribute is an attribute such as Size or Color
type ItemAttribute struct {
	Model
	AttributeName string               `gorm:"type:varchar(140);not null;uniqueIndex" json:"attributeName"`
	NumericValues bool                 `json:"numericValues"`
	Values        []ItemAttributeValue `gorm:"foreignKey:ItemAttributeID" json:"values"`
}

// TableName specifies the table name for ItemAttribute
func (ItemAttribute) TableName() string {
	return "item_attributes"
}

// ItemAttributeValue is one allowed value of an ItemAttribute
type ItemAttributeValue struct {
	Model
	ItemAttributeID uuid.UUID `gorm:"type:uuid;not null;index" json:"itemAttributeId"`
	AttributeValue  string    `gorm:"type:varchar(140);not null" json:"attributeValue"`
	Abbr            string    `gorm:"type:varchar(140)" json:"abbr"`
}

// TableName specifies the table name for ItemAttributeValue
func (ItemAttributeValue) TableName() string {
	return "item_attribute_values"
}

// ItemPrice is the rate of an item on a price list
type ItemPrice struct {
	Model
	ItemCode      string          `gorm:"type:varchar(140);not null;uniqueIndex:idx_item_price" json:"itemCode"`
	PriceList     string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_item_price" json:"priceList"`
	PriceListRate decimal.Decimal `gorm:"type:numeric(18,6)" json:"priceListRate"`
}

// TableName specifies the table name for ItemPrice
func (ItemPrice) TableName() string {
	return "item_prices"
}

// ItemGroup classifies items, e.g. by Shopify product type
type ItemGroup struct {
	Model
	Name        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	ParentGroup string `gorm:"type:varchar(255)" json:"parentGroup,omitempty"`
}

// TableName specifies the table name for ItemGroup
func (ItemGroup) TableName() string {
	return "item_groups"
}

// Supplier is created from a Shopify product vendor
type Supplier struct {
	Model
	Name          string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	SupplierGroup string `gorm:"type:varchar(255)" json:"supplierGroup"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierGroup groups suppliers
type SupplierGroup struct {
	Model
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name for SupplierGroup
func (SupplierGroup) TableName() string {
	return "supplier_groups"
}

// ItemAlias maps a shop-specific SKU or Shopify id to an existing item code
type ItemAlias struct {
	Model
	ShopID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_alias" json:"shopId"`
	Alias    string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_item_alias" json:"alias"`
	ItemCode string    `gorm:"type:varchar(140);not null" json:"itemCode"`
}

// TableName specifies the table name for ItemAlias
func (ItemAlias) TableName() string {
	return "item_aliases"
}
