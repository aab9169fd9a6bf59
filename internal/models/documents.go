package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice status values
const (
	InvoiceStatusDraft      = "Draft"
	InvoiceStatusUnpaid     = "Unpaid"
	InvoiceStatusReturn     = "Return"
	InvoiceStatusCreditNote = "Credit Note Issued"
	InvoiceStatusCancelled  = "Cancelled"
)

// Tax charge types and parent types
const (
	ChargeTypeActual = "Actual"

	ParentSalesOrder   = "sales_orders"
	ParentSalesInvoice = "sales_invoices"

	DiscountOnGrandTotal = "Grand Total"
)

// SalesOrder is the ERP sales order created from a Shopify order
type SalesOrder struct {
	Model
	Name               string    `gorm:"type:varchar(140);not null;uniqueIndex" json:"name"`
	ShopID             uuid.UUID `gorm:"type:uuid;not null;index:idx_so_shop_order" json:"shopId"`
	ShopifyOrderID     string    `gorm:"type:varchar(64);index:idx_so_shop_order" json:"shopifyOrderId"`
	ShopifyOrderNumber string    `gorm:"type:varchar(64);index" json:"shopifyOrderNumber"`
	Customer           string    `gorm:"type:varchar(255);not null" json:"customer"`
	Company            string    `gorm:"type:varchar(255)" json:"company"`
	Currency           string    `gorm:"type:varchar(10)" json:"currency"`
	TransactionDate    time.Time `json:"transactionDate"`
	DeliveryDate       time.Time `json:"deliveryDate"`
	SellingPriceList   string    `gorm:"type:varchar(255)" json:"sellingPriceList"`

	ApplyDiscountOn string          `gorm:"type:varchar(50)" json:"applyDiscountOn,omitempty"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(18,6)" json:"discountAmount"`
	TotalQty        decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalQty"`
	Total           decimal.Decimal `gorm:"type:numeric(18,6)" json:"total"`
	TotalTaxes      decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalTaxes"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(18,6)" json:"grandTotal"`
	PerBilled       decimal.Decimal `gorm:"type:numeric(9,4)" json:"perBilled"`
	PerDelivered    decimal.Decimal `gorm:"type:numeric(9,4)" json:"perDelivered"`

	DocStatus   DocStatus `gorm:"not null;default:0;index" json:"docStatus"`
	AmendedFrom string    `gorm:"type:varchar(140)" json:"amendedFrom,omitempty"`

	Items []SalesOrderItem `gorm:"foreignKey:SalesOrderID" json:"items"`
	Taxes []TaxCharge      `gorm:"polymorphic:Parent;polymorphicValue:sales_orders" json:"taxes"`
}

// TableName specifies the table name for SalesOrder
func (SalesOrder) TableName() string {
	return "sales_orders"
}

func (SalesOrder) DocType() string   { return "Sales Order" }
func (s SalesOrder) DocName() string { return s.Name }

// SalesOrderItem is a line of a sales order
type SalesOrderItem struct {
	Model
	SalesOrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"salesOrderId"`
	Idx               int             `json:"idx"`
	ItemCode          string          `gorm:"type:varchar(140);not null" json:"itemCode"`
	ItemName          string          `gorm:"type:varchar(255)" json:"itemName"`
	ShopifyLineItemID string          `gorm:"type:varchar(64)" json:"shopifyLineItemId,omitempty"`
	ShopifyProductID  string          `gorm:"type:varchar(64)" json:"shopifyProductId,omitempty"`
	ShopifyVariantID  string          `gorm:"type:varchar(64)" json:"shopifyVariantId,omitempty"`
	Qty               decimal.Decimal `gorm:"type:numeric(18,6)" json:"qty"`
	Rate              decimal.Decimal `gorm:"type:numeric(18,6)" json:"rate"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,6)" json:"amount"`
	Warehouse         string          `gorm:"type:varchar(255)" json:"warehouse"`
	DeliveredQty      decimal.Decimal `gorm:"type:numeric(18,6)" json:"deliveredQty"`
	BilledAmt         decimal.Decimal `gorm:"type:numeric(18,6)" json:"billedAmt"`
}

// TableName specifies the table name for SalesOrderItem
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// TaxCharge is a tax or charge row shared by sales orders and invoices
type TaxCharge struct {
	Model
	ParentID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_tax_parent" json:"parentId"`
	ParentType          string          `gorm:"type:varchar(50);not null;index:idx_tax_parent" json:"parentType"`
	Idx                 int             `json:"idx"`
	ChargeType          string          `gorm:"type:varchar(50)" json:"chargeType"`
	AccountHead         string          `gorm:"type:varchar(255);not null" json:"accountHead"`
	Description         string          `gorm:"type:text" json:"description"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric(18,6)" json:"taxAmount"`
	IncludedInPrintRate bool            `json:"includedInPrintRate"`
	CostCenter          string          `gorm:"type:varchar(255)" json:"costCenter,omitempty"`
}

// TableName specifies the table name for TaxCharge
func (TaxCharge) TableName() string {
	return "tax_charges"
}

// SalesInvoice is the ERP sales invoice, including return (credit note) invoices
type SalesInvoice struct {
	Model
	Name               string    `gorm:"type:varchar(140);not null;uniqueIndex" json:"name"`
	ShopID             uuid.UUID `gorm:"type:uuid;not null;index:idx_si_shop_order" json:"shopId"`
	ShopifyOrderID     string    `gorm:"type:varchar(64);index:idx_si_shop_order" json:"shopifyOrderId"`
	ShopifyOrderNumber string    `gorm:"type:varchar(64);index" json:"shopifyOrderNumber"`
	SalesOrder         string    `gorm:"type:varchar(140);index" json:"salesOrder"`
	Customer           string    `gorm:"type:varchar(255);not null" json:"customer"`
	Company            string    `gorm:"type:varchar(255)" json:"company"`
	Currency           string    `gorm:"type:varchar(10)" json:"currency"`
	PostingDate        time.Time `json:"postingDate"`
	DebitTo            string    `gorm:"type:varchar(255)" json:"debitTo"`
	IsReturn           bool      `gorm:"index" json:"isReturn"`
	ReturnAgainst      string    `gorm:"type:varchar(140);index" json:"returnAgainst,omitempty"`

	ApplyDiscountOn string          `gorm:"type:varchar(50)" json:"applyDiscountOn,omitempty"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(18,6)" json:"discountAmount"`
	TotalQty        decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalQty"`
	Total           decimal.Decimal `gorm:"type:numeric(18,6)" json:"total"`
	TotalTaxes      decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalTaxes"`
	GrandTotal      decimal.Decimal `gorm:"type:numeric(18,6)" json:"grandTotal"`

	DocStatus DocStatus `gorm:"not null;default:0;index" json:"docStatus"`
	Status    string    `gorm:"type:varchar(50)" json:"status"`

	Items []SalesInvoiceItem `gorm:"foreignKey:SalesInvoiceID" json:"items"`
	Taxes []TaxCharge        `gorm:"polymorphic:Parent;polymorphicValue:sales_invoices" json:"taxes"`
}

// TableName specifies the table name for SalesInvoice
func (SalesInvoice) TableName() string {
	return "sales_invoices"
}

func (SalesInvoice) DocType() string   { return "Sales Invoice" }
func (s SalesInvoice) DocName() string { return s.Name }

// IsReturned reports whether the invoice is a return or already has one
func (s *SalesInvoice) IsReturned() bool {
	return s.IsReturn || s.Status == InvoiceStatusReturn || s.Status == InvoiceStatusCreditNote
}

// SalesInvoiceItem is a line of a sales invoice
type SalesInvoiceItem struct {
	Model
	SalesInvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"salesInvoiceId"`
	Idx                int             `json:"idx"`
	ItemCode           string          `gorm:"type:varchar(140);not null" json:"itemCode"`
	ItemName           string          `gorm:"type:varchar(255)" json:"itemName"`
	ShopifyLineItemID  string          `gorm:"type:varchar(64)" json:"shopifyLineItemId,omitempty"`
	ShopifyProductID   string          `gorm:"type:varchar(64)" json:"shopifyProductId,omitempty"`
	ShopifyVariantID   string          `gorm:"type:varchar(64)" json:"shopifyVariantId,omitempty"`
	Qty                decimal.Decimal `gorm:"type:numeric(18,6)" json:"qty"`
	Rate               decimal.Decimal `gorm:"type:numeric(18,6)" json:"rate"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(9,4)" json:"discountPercentage"`
	Amount             decimal.Decimal `gorm:"type:numeric(18,6)" json:"amount"`
	Warehouse          string          `gorm:"type:varchar(255)" json:"warehouse,omitempty"`
	CostCenter         string          `gorm:"type:varchar(255)" json:"costCenter,omitempty"`
	SalesOrder         string          `gorm:"type:varchar(140)" json:"salesOrder,omitempty"`
	SOItemID           *uuid.UUID      `gorm:"type:uuid" json:"soItemId,omitempty"`
}

// TableName specifies the table name for SalesInvoiceItem
func (SalesInvoiceItem) TableName() string {
	return "sales_invoice_items"
}

// DeliveryNote is the ERP delivery note created per Shopify fulfillment
type DeliveryNote struct {
	Model
	Name                 string          `gorm:"type:varchar(140);not null;uniqueIndex" json:"name"`
	ShopID               uuid.UUID       `gorm:"type:uuid;not null;index:idx_dn_shop_fulfillment;index:idx_dn_shop_order" json:"shopId"`
	ShopifyOrderID       string          `gorm:"type:varchar(64);index:idx_dn_shop_order" json:"shopifyOrderId"`
	ShopifyOrderNumber   string          `gorm:"type:varchar(64)" json:"shopifyOrderNumber"`
	ShopifyOrderName     string          `gorm:"type:varchar(64)" json:"shopifyOrderName"`
	ShopifyFulfillmentID string          `gorm:"type:varchar(64);index:idx_dn_shop_fulfillment" json:"shopifyFulfillmentId"`
	SalesOrder           string          `gorm:"type:varchar(140);index" json:"salesOrder"`
	Customer             string          `gorm:"type:varchar(255);not null" json:"customer"`
	Company              string          `gorm:"type:varchar(255)" json:"company"`
	PostingDate          time.Time       `json:"postingDate"`
	TotalQty             decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalQty"`
	Total                decimal.Decimal `gorm:"type:numeric(18,6)" json:"total"`

	DocStatus DocStatus `gorm:"not null;default:0;index" json:"docStatus"`

	Items []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID" json:"items"`
}

// TableName specifies the table name for DeliveryNote
func (DeliveryNote) TableName() string {
	return "delivery_notes"
}

func (DeliveryNote) DocType() string   { return "Delivery Note" }
func (d DeliveryNote) DocName() string { return d.Name }

// DeliveryNoteItem is a line of a delivery note
type DeliveryNoteItem struct {
	Model
	DeliveryNoteID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"deliveryNoteId"`
	Idx                    int             `json:"idx"`
	ItemCode               string          `gorm:"type:varchar(140);not null" json:"itemCode"`
	ItemName               string          `gorm:"type:varchar(255)" json:"itemName"`
	ShopifyLineItemID      string          `gorm:"type:varchar(64)" json:"shopifyLineItemId,omitempty"`
	Qty                    decimal.Decimal `gorm:"type:numeric(18,6)" json:"qty"`
	Rate                   decimal.Decimal `gorm:"type:numeric(18,6)" json:"rate"`
	Amount                 decimal.Decimal `gorm:"type:numeric(18,6)" json:"amount"`
	Warehouse              string          `gorm:"type:varchar(255)" json:"warehouse"`
	AllowZeroValuationRate bool            `json:"allowZeroValuationRate"`
	AgainstSalesOrder      string          `gorm:"type:varchar(140)" json:"againstSalesOrder"`
	SOItemID               *uuid.UUID      `gorm:"type:uuid" json:"soItemId,omitempty"`
}

// TableName specifies the table name for DeliveryNoteItem
func (DeliveryNoteItem) TableName() string {
	return "delivery_note_items"
}
