package shopify

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amount decodes Shopify money fields, which arrive as strings, numbers, "" or null
type amount struct {
	value decimal.Decimal
	valid bool
}

func (a *amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = amount{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*a = amount{value: d, valid: true}
	return nil
}

func (a amount) ptr() *decimal.Decimal {
	if !a.valid {
		return nil
	}
	d := a.value
	return &d
}

// objectID decodes Shopify ids, which may be numbers, strings or null
type objectID string

func (id *objectID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*id = objectID(s)
	return nil
}

func (id objectID) String() string {
	return string(id)
}

// Shopify data structures
type shopifyOrder struct {
	ID                    objectID              `json:"id"`
	Name                  string                `json:"name"`
	OrderNumber           objectID              `json:"order_number"`
	Email                 string                `json:"email"`
	Currency              string                `json:"currency"`
	FinancialStatus       string                `json:"financial_status"`
	FulfillmentStatus     string                `json:"fulfillment_status"`
	TaxesIncluded         bool                  `json:"taxes_included"`
	TotalPrice            amount                `json:"total_price"`
	TotalTax              amount                `json:"total_tax"`
	CurrentTotalTax       amount                `json:"current_total_tax"`
	CurrentTotalDiscounts amount                `json:"current_total_discounts"`
	Customer              *shopifyCustomer      `json:"customer"`
	LineItems             []shopifyLineItem     `json:"line_items"`
	ShippingLines         []shopifyShippingLine `json:"shipping_lines"`
	TaxLines              []shopifyTaxLine      `json:"tax_lines"`
	Fulfillments          []shopifyFulfillment  `json:"fulfillments"`
	CreatedAt             time.Time             `json:"created_at"`
	CancelledAt           *time.Time            `json:"cancelled_at"`
	CancelReason          string                `json:"cancel_reason"`
}

type shopifyLineItem struct {
	ID                  objectID `json:"id"`
	ProductID           objectID `json:"product_id"`
	VariantID           objectID `json:"variant_id"`
	SKU                 string   `json:"sku"`
	Title               string   `json:"title"`
	VariantTitle        string   `json:"variant_title"`
	Quantity            int      `json:"quantity"`
	FulfillableQuantity *int     `json:"fulfillable_quantity"`
	Price               amount   `json:"price"`
	TotalDiscount       amount   `json:"total_discount"`
}

type shopifyShippingLine struct {
	Title string `json:"title"`
	Price amount `json:"price"`
}

type shopifyTaxLine struct {
	Title string `json:"title"`
	Rate  amount `json:"rate"`
	Price amount `json:"price"`
}

type shopifyFulfillment struct {
	ID        objectID          `json:"id"`
	OrderID   objectID          `json:"order_id"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	LineItems []shopifyLineItem `json:"line_items"`
}

type shopifyRefund struct {
	ID               objectID                 `json:"id"`
	OrderID          objectID                 `json:"order_id"`
	Note             string                   `json:"note"`
	CreatedAt        *time.Time               `json:"created_at"`
	ProcessedAt      *time.Time               `json:"processed_at"`
	RefundLineItems  []shopifyRefundLineItem  `json:"refund_line_items"`
	OrderAdjustments []shopifyOrderAdjustment `json:"order_adjustments"`
}

type shopifyRefundLineItem struct {
	ID         objectID        `json:"id"`
	LineItemID objectID        `json:"line_item_id"`
	Quantity   int             `json:"quantity"`
	LineItem   shopifyLineItem `json:"line_item"`
}

type shopifyOrderAdjustment struct {
	ID        objectID `json:"id"`
	Kind      string   `json:"kind"`
	Reason    string   `json:"reason"`
	Amount    amount   `json:"amount"`
	TaxAmount amount   `json:"tax_amount"`
}

type shopifyCustomer struct {
	ID               objectID         `json:"id"`
	Email            string           `json:"email"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Phone            string           `json:"phone"`
	AcceptsMarketing bool             `json:"accepts_marketing"`
	TaxExempt        bool             `json:"tax_exempt"`
	DefaultAddress   *shopifyAddress  `json:"default_address"`
	Addresses        []shopifyAddress `json:"addresses"`
}

type shopifyAddress struct {
	ID           objectID `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Company      string   `json:"company"`
	Address1     string   `json:"address1"`
	Address2     string   `json:"address2"`
	City         string   `json:"city"`
	Province     string   `json:"province"`
	ProvinceCode string   `json:"province_code"`
	Country      string   `json:"country"`
	CountryCode  string   `json:"country_code"`
	Zip          string   `json:"zip"`
	Phone        string   `json:"phone"`
	Default      bool     `json:"default"`
}

type shopifyProduct struct {
	ID          objectID         `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Options     []shopifyOption  `json:"options"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []shopifyImage   `json:"images"`
}

type shopifyVariant struct {
	ID         objectID `json:"id"`
	ProductID  objectID `json:"product_id"`
	Title      string   `json:"title"`
	SKU        string   `json:"sku"`
	Price      amount   `json:"price"`
	Weight     amount   `json:"weight"`
	WeightUnit string   `json:"weight_unit"`
	Option1    *string  `json:"option1"`
	Option2    *string  `json:"option2"`
	Option3    *string  `json:"option3"`
}

type shopifyOption struct {
	ID       objectID `json:"id"`
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

type shopifyImage struct {
	ID         objectID   `json:"id"`
	Src        string     `json:"src"`
	VariantIDs []objectID `json:"variant_ids"`
}

type shopifyPayout struct {
	ID       objectID             `json:"id"`
	Status   string               `json:"status"`
	Date     string               `json:"date"`
	Currency string               `json:"currency"`
	Amount   amount               `json:"amount"`
	Summary  shopifyPayoutSummary `json:"summary"`
}

type shopifyPayoutSummary struct {
	AdjustmentsFeeAmount      amount `json:"adjustments_fee_amount"`
	AdjustmentsGrossAmount    amount `json:"adjustments_gross_amount"`
	ChargesFeeAmount          amount `json:"charges_fee_amount"`
	ChargesGrossAmount        amount `json:"charges_gross_amount"`
	RefundsFeeAmount          amount `json:"refunds_fee_amount"`
	RefundsGrossAmount        amount `json:"refunds_gross_amount"`
	ReservedFundsFeeAmount    amount `json:"reserved_funds_fee_amount"`
	ReservedFundsGrossAmount  amount `json:"reserved_funds_gross_amount"`
	RetriedPayoutsFeeAmount   amount `json:"retried_payouts_fee_amount"`
	RetriedPayoutsGrossAmount amount `json:"retried_payouts_gross_amount"`
}

type shopifyTransaction struct {
	ID                       objectID   `json:"id"`
	Type                     string     `json:"type"`
	Test                     bool       `json:"test"`
	PayoutID                 objectID   `json:"payout_id"`
	Currency                 string     `json:"currency"`
	Amount                   amount     `json:"amount"`
	Fee                      amount     `json:"fee"`
	Net                      amount     `json:"net"`
	SourceID                 objectID   `json:"source_id"`
	SourceType               string     `json:"source_type"`
	SourceOrderID            objectID   `json:"source_order_id"`
	SourceOrderTransactionID objectID   `json:"source_order_transaction_id"`
	ProcessedAt              *time.Time `json:"processed_at"`
}
