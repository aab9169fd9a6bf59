package clients

import (
	"time"

	"github.com/shopspring/decimal"
)

// Financial statuses of an order
const (
	FinancialStatusPending           = "pending"
	FinancialStatusPaid              = "paid"
	FinancialStatusPartiallyPaid     = "partially_paid"
	FinancialStatusPartiallyRefunded = "partially_refunded"
	FinancialStatusRefunded          = "refunded"
	FinancialStatusVoided            = "voided"
)

// Order is a parsed platform order. Fields the platform may omit are pointers.
type Order struct {
	ID                    string
	OrderNumber           string
	Name                  string
	Email                 string
	Currency              string
	FinancialStatus       string
	FulfillmentStatus     string
	TaxesIncluded         bool
	TotalPrice            decimal.Decimal
	TotalTax              decimal.Decimal
	CurrentTotalTax       *decimal.Decimal
	CurrentTotalDiscounts *decimal.Decimal
	Customer              *Customer
	LineItems             []LineItem
	ShippingLines         []ShippingLine
	TaxLines              []TaxLine
	Fulfillments          []Fulfillment
	CreatedAt             time.Time
	CancelledAt           *time.Time
	CancelReason          string
}

// IsInvoiceable reports whether the financial status allows invoicing
func (o *Order) IsInvoiceable() bool {
	switch o.FinancialStatus {
	case FinancialStatusPaid, FinancialStatusPartiallyRefunded, FinancialStatusRefunded:
		return true
	}
	return false
}

// IsRefunded reports whether the order is fully or partially refunded
func (o *Order) IsRefunded() bool {
	return o.FinancialStatus == FinancialStatusRefunded || o.FinancialStatus == FinancialStatusPartiallyRefunded
}

// LineItem is an order line, also used inside fulfillments and refunds
type LineItem struct {
	ID                  string
	ProductID           string
	VariantID           string
	SKU                 string
	Title               string
	VariantTitle        string
	Quantity            int
	FulfillableQuantity *int
	Price               decimal.Decimal
	TotalDiscount       decimal.Decimal
}

// OrderedQuantity prefers the fulfillable quantity when the platform sent one
func (li *LineItem) OrderedQuantity() int {
	if li.FulfillableQuantity != nil {
		return *li.FulfillableQuantity
	}
	return li.Quantity
}

// ShippingLine is a shipping charge on an order
type ShippingLine struct {
	Title string
	Price decimal.Decimal
}

// TaxLine is a tax charge on an order
type TaxLine struct {
	Title string
	Rate  *decimal.Decimal
	Price decimal.Decimal
}

// Fulfillment is a shipped subset of an order's line items
type Fulfillment struct {
	ID        string
	OrderID   string
	Status    string
	CreatedAt time.Time
	LineItems []LineItem
}

// Refund is a refund issued against an order
type Refund struct {
	ID               string
	OrderID          string
	Note             string
	CreatedAt        *time.Time
	ProcessedAt      *time.Time
	RefundLineItems  []RefundLineItem
	OrderAdjustments []OrderAdjustment
}

// RefundedAt returns the processed time, falling back to the creation time
func (r *Refund) RefundedAt() *time.Time {
	if r.ProcessedAt != nil {
		return r.ProcessedAt
	}
	return r.CreatedAt
}

// RefundLineItem references the refunded order line
type RefundLineItem struct {
	ID         string
	LineItemID string
	Quantity   int
	LineItem   LineItem
}

// OrderAdjustment is a monetary adjustment attached to a refund
type OrderAdjustment struct {
	ID        string
	Kind      string
	Reason    string
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
}

// Customer is a platform customer
type Customer struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	AcceptsMarketing bool
	TaxExempt        bool
	DefaultAddress   *Address
	Addresses        []Address
}

// Address is a platform postal address
type Address struct {
	ID           string
	FirstName    string
	LastName     string
	Company      string
	Address1     string
	Address2     string
	City         string
	Province     string
	ProvinceCode string
	Country      string
	CountryCode  string
	Zip          string
	Phone        string
	Default      bool
}

// Product is a platform product with its variants
type Product struct {
	ID          string
	Title       string
	BodyHTML    string
	Vendor      string
	ProductType string
	Status      string
	Options     []Option
	Variants    []Variant
	Images      []Image
}

// HasVariants reports whether the product has real option variants rather than
// the single placeholder option every product carries
func (p *Product) HasVariants() bool {
	if len(p.Options) == 0 {
		return false
	}
	for _, v := range p.Options[0].Values {
		if v == "Default Title" {
			return false
		}
	}
	return true
}

// ImageFor returns the image assigned to a variant, else the first product image
func (p *Product) ImageFor(variantID string) string {
	if variantID != "" {
		for _, img := range p.Images {
			for _, id := range img.VariantIDs {
				if id == variantID {
					return img.Src
				}
			}
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].Src
	}
	return ""
}

// Variant is a purchasable variant of a product
type Variant struct {
	ID         string
	ProductID  string
	Title      string
	SKU        string
	Price      decimal.Decimal
	Weight     decimal.Decimal
	WeightUnit string
	Option1    string
	Option2    string
	Option3    string
}

// OptionValues returns option1..option3 in position order
func (v *Variant) OptionValues() []string {
	return []string{v.Option1, v.Option2, v.Option3}
}

// Option is a product option such as Size with its values
type Option struct {
	ID       string
	Name     string
	Position int
	Values   []string
}

// Image is a product image, optionally bound to variants
type Image struct {
	ID         string
	Src        string
	VariantIDs []string
}

// Payout is a platform payments payout
type Payout struct {
	ID       string
	Status   string
	Date     time.Time
	Currency string
	Amount   decimal.Decimal
	Summary  PayoutSummary
}

// PayoutSummary breaks a payout down by gross amount and fee
type PayoutSummary struct {
	AdjustmentsFeeAmount      decimal.Decimal
	AdjustmentsGrossAmount    decimal.Decimal
	ChargesFeeAmount          decimal.Decimal
	ChargesGrossAmount        decimal.Decimal
	RefundsFeeAmount          decimal.Decimal
	RefundsGrossAmount        decimal.Decimal
	ReservedFundsFeeAmount    decimal.Decimal
	ReservedFundsGrossAmount  decimal.Decimal
	RetriedPayoutsFeeAmount   decimal.Decimal
	RetriedPayoutsGrossAmount decimal.Decimal
}

// Transaction is a balance transaction belonging to a payout
type Transaction struct {
	ID                       string
	Type                     string
	PayoutID                 string
	Currency                 string
	Amount                   decimal.Decimal
	Fee                      decimal.Decimal
	Net                      decimal.Decimal
	SourceID                 string
	SourceType               string
	SourceOrderID            string
	SourceOrderTransactionID string
	ProcessedAt              *time.Time
	Test                     bool
}
