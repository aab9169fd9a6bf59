package erp

import (
	"github.com/shopspring/decimal"
	"shopify-integration-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// taxTotals returns the sum of every charge and the part that is added on top
// of the net total (charges not already included in the item rates)
func taxTotals(taxes []models.TaxCharge) (all, additive decimal.Decimal) {
	for _, t := range taxes {
		all = all.Add(t.TaxAmount)
		if !t.IncludedInPrintRate {
			additive = additive.Add(t.TaxAmount)
		}
	}
	return all, additive
}

// CalculateSalesOrderTotals sets line amounts and document totals.
// Grand total is net total plus additive charges minus the discount.
func CalculateSalesOrderTotals(so *models.SalesOrder) {
	so.Total = decimal.Zero
	so.TotalQty = decimal.Zero
	for i := range so.Items {
		item := &so.Items[i]
		item.Idx = i + 1
		item.Amount = item.Qty.Mul(item.Rate).Round(2)
		so.Total = so.Total.Add(item.Amount)
		so.TotalQty = so.TotalQty.Add(item.Qty)
	}
	for i := range so.Taxes {
		so.Taxes[i].Idx = i + 1
	}

	var additive decimal.Decimal
	so.TotalTaxes, additive = taxTotals(so.Taxes)
	so.GrandTotal = so.Total.Add(additive).Sub(so.DiscountAmount)
}

// CalculateInvoiceTotals sets line amounts, applying the line discount
// percentage, and document totals
func CalculateInvoiceTotals(si *models.SalesInvoice) {
	si.Total = decimal.Zero
	si.TotalQty = decimal.Zero
	for i := range si.Items {
		item := &si.Items[i]
		item.Idx = i + 1
		factor := hundred.Sub(item.DiscountPercentage).Div(hundred)
		item.Amount = item.Qty.Mul(item.Rate).Mul(factor).Round(2)
		si.Total = si.Total.Add(item.Amount)
		si.TotalQty = si.TotalQty.Add(item.Qty)
	}
	for i := range si.Taxes {
		si.Taxes[i].Idx = i + 1
	}

	var additive decimal.Decimal
	si.TotalTaxes, additive = taxTotals(si.Taxes)
	si.GrandTotal = si.Total.Add(additive).Sub(si.DiscountAmount)
}

// CalculateDeliveryTotals sets line amounts and delivery totals
func CalculateDeliveryTotals(dn *models.DeliveryNote) {
	dn.Total = decimal.Zero
	dn.TotalQty = decimal.Zero
	for i := range dn.Items {
		item := &dn.Items[i]
		item.Idx = i + 1
		item.Amount = item.Qty.Mul(item.Rate).Round(2)
		dn.Total = dn.Total.Add(item.Amount)
		dn.TotalQty = dn.TotalQty.Add(item.Qty)
	}
}
