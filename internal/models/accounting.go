package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RootType is the top-level classification of an account
type RootType string

const (
	RootAsset     RootType = "Asset"
	RootLiability RootType = "Liability"
	RootEquity    RootType = "Equity"
	RootIncome    RootType = "Income"
	RootExpense   RootType = "Expense"
)

// Account types that flip the debit/credit convention
const (
	AccountTypeReceivable = "Receivable"
	AccountTypePayable    = "Payable"
	AccountTypeBank       = "Bank"
	AccountTypeCash       = "Cash"
	AccountTypeTax        = "Tax"
)

// Account is a general ledger account
type Account struct {
	Model
	Name        string   `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Company     string   `gorm:"type:varchar(255)" json:"company"`
	RootType    RootType `gorm:"type:varchar(20);not null" json:"rootType"`
	AccountType string   `gorm:"type:varchar(50)" json:"accountType,omitempty"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// JournalEntry balances payout cash movement against invoices
type JournalEntry struct {
	Model
	Name        string          `gorm:"type:varchar(140);not null;uniqueIndex" json:"name"`
	ShopID      uuid.UUID       `gorm:"type:uuid;index" json:"shopId"`
	PayoutID    *uuid.UUID      `gorm:"type:uuid;index" json:"payoutId,omitempty"`
	Company     string          `gorm:"type:varchar(255)" json:"company"`
	PostingDate time.Time       `json:"postingDate"`
	UserRemark  string          `gorm:"type:text" json:"userRemark,omitempty"`
	TotalDebit  decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalDebit"`
	TotalCredit decimal.Decimal `gorm:"type:numeric(18,6)" json:"totalCredit"`
	DocStatus   DocStatus       `gorm:"not null;default:0" json:"docStatus"`

	Accounts []JournalEntryAccount `gorm:"foreignKey:JournalEntryID" json:"accounts"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}

func (JournalEntry) DocType() string   { return "Journal Entry" }
func (j JournalEntry) DocName() string { return j.Name }

// JournalEntryAccount is one debit or credit row of a journal entry
type JournalEntryAccount struct {
	Model
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"journalEntryId"`
	Idx            int             `json:"idx"`
	Account        string          `gorm:"type:varchar(255);not null" json:"account"`
	Debit          decimal.Decimal `gorm:"type:numeric(18,6)" json:"debit"`
	Credit         decimal.Decimal `gorm:"type:numeric(18,6)" json:"credit"`
	ReferenceType  string          `gorm:"type:varchar(50)" json:"referenceType,omitempty"`
	ReferenceName  string          `gorm:"type:varchar(140)" json:"referenceName,omitempty"`
	PartyType      string          `gorm:"type:varchar(50)" json:"partyType,omitempty"`
	Party          string          `gorm:"type:varchar(255)" json:"party,omitempty"`
	UserRemark     string          `gorm:"type:text" json:"userRemark,omitempty"`
}

// TableName specifies the table name for JournalEntryAccount
func (JournalEntryAccount) TableName() string {
	return "journal_entry_accounts"
}
