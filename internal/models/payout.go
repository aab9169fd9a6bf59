package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionTypePayout marks the balance transaction that moves money out to the bank
const TransactionTypePayout = "payout"

// Payout is the local ledger of one Shopify Payments payout
type Payout struct {
	Model
	ShopID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payout_shop_payout" json:"shopId"`
	ShopifyPayoutID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_payout_shop_payout" json:"shopifyPayoutId"`
	Company         string          `gorm:"type:varchar(255)" json:"company"`
	PayoutDate      time.Time       `json:"payoutDate"`
	Status          string          `gorm:"type:varchar(50)" json:"status"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,6)" json:"amount"`
	Currency        string          `gorm:"type:varchar(10)" json:"currency"`

	AdjustmentsFeeAmount      decimal.Decimal `gorm:"type:numeric(18,6)" json:"adjustmentsFeeAmount"`
	AdjustmentsGrossAmount    decimal.Decimal `gorm:"type:numeric(18,6)" json:"adjustmentsGrossAmount"`
	ChargesFeeAmount          decimal.Decimal `gorm:"type:numeric(18,6)" json:"chargesFeeAmount"`
	ChargesGrossAmount        decimal.Decimal `gorm:"type:numeric(18,6)" json:"chargesGrossAmount"`
	RefundsFeeAmount          decimal.Decimal `gorm:"type:numeric(18,6)" json:"refundsFeeAmount"`
	RefundsGrossAmount        decimal.Decimal `gorm:"type:numeric(18,6)" json:"refundsGrossAmount"`
	ReservedFundsFeeAmount    decimal.Decimal `gorm:"type:numeric(18,6)" json:"reservedFundsFeeAmount"`
	ReservedFundsGrossAmount  decimal.Decimal `gorm:"type:numeric(18,6)" json:"reservedFundsGrossAmount"`
	RetriedPayoutsFeeAmount   decimal.Decimal `gorm:"type:numeric(18,6)" json:"retriedPayoutsFeeAmount"`
	RetriedPayoutsGrossAmount decimal.Decimal `gorm:"type:numeric(18,6)" json:"retriedPayoutsGrossAmount"`

	DocStatus    DocStatus `gorm:"not null;default:0" json:"docStatus"`
	JournalEntry string    `gorm:"type:varchar(140)" json:"journalEntry,omitempty"`

	Transactions []PayoutTransaction `gorm:"foreignKey:PayoutID" json:"transactions"`
}

// TableName specifies the table name for Payout
func (Payout) TableName() string {
	return "shopify_payouts"
}

func (Payout) DocType() string   { return "Shopify Payout" }
func (p Payout) DocName() string { return p.ShopifyPayoutID }

// PayoutTransaction is one balance transaction inside a payout
type PayoutTransaction struct {
	Model
	PayoutID                   uuid.UUID       `gorm:"type:uuid;not null;index" json:"payoutId"`
	ShopID                     uuid.UUID       `gorm:"type:uuid;not null;index:idx_payout_txn_order" json:"shopId"`
	Idx                        int             `json:"idx"`
	TransactionID              string          `gorm:"type:varchar(64)" json:"transactionId"`
	TransactionType            string          `gorm:"type:varchar(50)" json:"transactionType"`
	ProcessedAt                *time.Time      `json:"processedAt,omitempty"`
	TotalAmount                decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalAmount"`
	Fee                        decimal.Decimal `gorm:"type:numeric(18,6)" json:"fee"`
	NetAmount                  decimal.Decimal `gorm:"type:numeric(18,6)" json:"netAmount"`
	Currency                   string          `gorm:"type:varchar(10)" json:"currency"`
	SalesOrder                 string          `gorm:"type:varchar(140);index" json:"salesOrder,omitempty"`
	SalesInvoice               string          `gorm:"type:varchar(140);index" json:"salesInvoice,omitempty"`
	DeliveryNote               string          `gorm:"type:varchar(140);index" json:"deliveryNote,omitempty"`
	SourceID                   string          `gorm:"type:varchar(64)" json:"sourceId,omitempty"`
	SourceType                 string          `gorm:"type:varchar(50)" json:"sourceType,omitempty"`
	SourceOrderID              string          `gorm:"type:varchar(64);index:idx_payout_txn_order" json:"sourceOrderId,omitempty"`
	SourceOrderTransactionID   string          `gorm:"type:varchar(64)" json:"sourceOrderTransactionId,omitempty"`
	SourceOrderFinancialStatus string          `gorm:"type:varchar(50)" json:"sourceOrderFinancialStatus,omitempty"`
}

// TableName specifies the table name for PayoutTransaction
func (PayoutTransaction) TableName() string {
	return "shopify_payout_transactions"
}

// IsPayout reports whether the row is the bank transfer itself
func (t *PayoutTransaction) IsPayout() bool {
	return t.TransactionType == TransactionTypePayout
}
