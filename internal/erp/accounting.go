package erp

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"shopify-integration-service/internal/models"
)

// ErrAccountNotConfigured is returned when a shop has no account for a posting type
var ErrAccountNotConfigured = errors.New("account not specified")

// AccountKind is a posting type that maps to one of the shop's accounts
type AccountKind string

const (
	AccountPayout     AccountKind = "payout"
	AccountRefund     AccountKind = "refund"
	AccountTax        AccountKind = "tax"
	AccountShipping   AccountKind = "shipping"
	AccountFee        AccountKind = "fee"
	AccountAdjustment AccountKind = "adjustment"
)

// AccountFor returns the shop account a posting type is booked against
func AccountFor(shop *models.Shop, kind AccountKind) (string, error) {
	var account string
	switch kind {
	case AccountPayout:
		account = shop.CashBankAccount
	case AccountRefund:
		account = shop.RefundAccount
		if account == "" {
			account = shop.CashBankAccount
		}
	case AccountTax:
		account = shop.TaxAccount
	case AccountShipping:
		account = shop.ShippingAccount
	case AccountFee, AccountAdjustment:
		account = shop.PaymentFeeAccount
	}
	if account == "" {
		return "", fmt.Errorf("%w for %s", ErrAccountNotConfigured, kind)
	}
	return account, nil
}

// IsDebit reports whether a signed amount posts to the debit side of an
// account with the given root and account type
func IsDebit(rootType models.RootType, accountType string, amount decimal.Decimal) bool {
	receivableOrPayable := accountType == models.AccountTypeReceivable || accountType == models.AccountTypePayable

	switch rootType {
	case models.RootAsset:
		if receivableOrPayable {
			return amount.IsNegative()
		}
		return amount.IsPositive()
	case models.RootExpense:
		return amount.IsNegative()
	case models.RootIncome:
		return amount.IsPositive()
	case models.RootEquity, models.RootLiability:
		if receivableOrPayable {
			return amount.IsPositive()
		}
		return amount.IsNegative()
	}
	return false
}

// EntryOptions carries the optional references of a journal entry row
type EntryOptions struct {
	ReferenceType string
	ReferenceName string
	PartyType     string
	Party         string
	UserRemark    string
}

// NewAccountingEntry builds a journal entry row posting |amount| to the side
// the account's type dictates
func NewAccountingEntry(account *models.Account, amount decimal.Decimal, opts EntryOptions) models.JournalEntryAccount {
	row := models.JournalEntryAccount{
		Account:       account.Name,
		ReferenceType: opts.ReferenceType,
		ReferenceName: opts.ReferenceName,
		PartyType:     opts.PartyType,
		Party:         opts.Party,
		UserRemark:    opts.UserRemark,
	}
	if IsDebit(account.RootType, account.AccountType, amount) {
		row.Debit = amount.Abs()
	} else {
		row.Credit = amount.Abs()
	}
	return row
}

// JournalTotals sums the debit and credit sides of a journal entry
func JournalTotals(rows []models.JournalEntryAccount) (debit, credit decimal.Decimal) {
	for _, r := range rows {
		debit = debit.Add(r.Debit)
		credit = credit.Add(r.Credit)
	}
	return debit, credit
}
