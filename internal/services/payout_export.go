package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"shopify-integration-service/internal/models"
)

const (
	payoutSheet      = "Payout"
	transactionSheet = "Transactions"
)

var transactionHeadings = []string{
	"Idx", "Transaction ID", "Type", "Processed At", "Amount", "Fee", "Net Amount", "Currency",
	"Source Order", "Financial Status", "Sales Order", "Sales Invoice", "Delivery Note",
}

// PayoutFilename is the download name of a payout export
func PayoutFilename(payout *models.Payout) string {
	return fmt.Sprintf("payout-%s.xlsx", payout.ShopifyPayoutID)
}

// ExportPayout writes a payout and its transactions as an XLSX workbook
func ExportPayout(payout *models.Payout, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payoutSheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Payout", payout.ShopifyPayoutID},
		{"Date", payout.PayoutDate.Format("2006-01-02")},
		{"Status", payout.Status},
		{"Amount", payout.Amount.InexactFloat64()},
		{"Currency", payout.Currency},
		{"Charges Gross", payout.ChargesGrossAmount.InexactFloat64()},
		{"Charges Fee", payout.ChargesFeeAmount.InexactFloat64()},
		{"Refunds Gross", payout.RefundsGrossAmount.InexactFloat64()},
		{"Refunds Fee", payout.RefundsFeeAmount.InexactFloat64()},
		{"Adjustments Gross", payout.AdjustmentsGrossAmount.InexactFloat64()},
		{"Adjustments Fee", payout.AdjustmentsFeeAmount.InexactFloat64()},
		{"Journal Entry", payout.JournalEntry},
	}
	for i, row := range summary {
		if err := setRow(f, payoutSheet, i+1, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(transactionSheet); err != nil {
		return err
	}
	headings := make([]interface{}, len(transactionHeadings))
	for i, h := range transactionHeadings {
		headings[i] = h
	}
	if err := setRow(f, transactionSheet, 1, headings); err != nil {
		return err
	}

	for i, txn := range payout.Transactions {
		processedAt := ""
		if txn.ProcessedAt != nil {
			processedAt = txn.ProcessedAt.Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			txn.Idx, txn.TransactionID, txn.TransactionType, processedAt,
			txn.TotalAmount.InexactFloat64(), txn.Fee.InexactFloat64(), txn.NetAmount.InexactFloat64(), txn.Currency,
			txn.SourceOrderID, txn.SourceOrderFinancialStatus, txn.SalesOrder, txn.SalesInvoice, txn.DeliveryNote,
		}
		if err := setRow(f, transactionSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
