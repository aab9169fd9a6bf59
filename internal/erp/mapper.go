package erp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"shopify-integration-service/internal/models"
)

func copyTaxes(taxes []models.TaxCharge, negate bool) []models.TaxCharge {
	out := make([]models.TaxCharge, 0, len(taxes))
	for _, t := range taxes {
		amount := t.TaxAmount
		if negate {
			amount = amount.Neg()
		}
		out = append(out, models.TaxCharge{
			ChargeType:          t.ChargeType,
			AccountHead:         t.AccountHead,
			Description:         t.Description,
			TaxAmount:           amount,
			IncludedInPrintRate: t.IncludedInPrintRate,
			CostCenter:          t.CostCenter,
		})
	}
	return out
}

// MakeSalesInvoice derives a draft invoice for the unbilled part of a sales order
func MakeSalesInvoice(so *models.SalesOrder) *models.SalesInvoice {
	si := &models.SalesInvoice{
		ShopID:             so.ShopID,
		ShopifyOrderID:     so.ShopifyOrderID,
		ShopifyOrderNumber: so.ShopifyOrderNumber,
		SalesOrder:         so.Name,
		Customer:           so.Customer,
		Company:            so.Company,
		Currency:           so.Currency,
		PostingDate:        so.TransactionDate,
		ApplyDiscountOn:    so.ApplyDiscountOn,
		DiscountAmount:     so.DiscountAmount,
		DocStatus:          models.DocStatusDraft,
		Status:             models.InvoiceStatusDraft,
		Taxes:              copyTaxes(so.Taxes, false),
	}

	for _, item := range so.Items {
		if !item.BilledAmt.IsZero() && item.BilledAmt.GreaterThanOrEqual(item.Amount) {
			continue
		}
		soItemID := item.ID
		si.Items = append(si.Items, models.SalesInvoiceItem{
			ItemCode:          item.ItemCode,
			ItemName:          item.ItemName,
			ShopifyLineItemID: item.ShopifyLineItemID,
			ShopifyProductID:  item.ShopifyProductID,
			ShopifyVariantID:  item.ShopifyVariantID,
			Qty:               item.Qty,
			Rate:              item.Rate,
			Warehouse:         item.Warehouse,
			SalesOrder:        so.Name,
			SOItemID:          &soItemID,
		})
	}

	CalculateInvoiceTotals(si)
	return si
}

// MakeDeliveryNote derives a draft delivery note for the undelivered quantity
// of every sales order line
func MakeDeliveryNote(so *models.SalesOrder, postingDate time.Time) *models.DeliveryNote {
	dn := &models.DeliveryNote{
		ShopID:             so.ShopID,
		ShopifyOrderID:     so.ShopifyOrderID,
		ShopifyOrderNumber: so.ShopifyOrderNumber,
		SalesOrder:         so.Name,
		Customer:           so.Customer,
		Company:            so.Company,
		PostingDate:        postingDate,
		DocStatus:          models.DocStatusDraft,
	}

	for _, item := range so.Items {
		remaining := item.Qty.Sub(item.DeliveredQty)
		if !remaining.IsPositive() {
			continue
		}
		soItemID := item.ID
		dn.Items = append(dn.Items, models.DeliveryNoteItem{
			ItemCode:          item.ItemCode,
			ItemName:          item.ItemName,
			ShopifyLineItemID: item.ShopifyLineItemID,
			Qty:               remaining,
			Rate:              item.Rate,
			Warehouse:         item.Warehouse,
			AgainstSalesOrder: so.Name,
			SOItemID:          &soItemID,
		})
	}

	CalculateDeliveryTotals(dn)
	return dn
}

// MakeSalesReturn derives a draft credit note reversing every line, charge and
// discount of a submitted invoice
func MakeSalesReturn(si *models.SalesInvoice, postingDate time.Time) *models.SalesInvoice {
	ret := &models.SalesInvoice{
		ShopID:             si.ShopID,
		ShopifyOrderID:     si.ShopifyOrderID,
		ShopifyOrderNumber: si.ShopifyOrderNumber,
		SalesOrder:         si.SalesOrder,
		Customer:           si.Customer,
		Company:            si.Company,
		Currency:           si.Currency,
		PostingDate:        postingDate,
		DebitTo:            si.DebitTo,
		IsReturn:           true,
		ReturnAgainst:      si.Name,
		ApplyDiscountOn:    si.ApplyDiscountOn,
		DiscountAmount:     si.DiscountAmount.Neg(),
		DocStatus:          models.DocStatusDraft,
		Status:             models.InvoiceStatusDraft,
		Taxes:              copyTaxes(si.Taxes, true),
	}

	for _, item := range si.Items {
		ret.Items = append(ret.Items, models.SalesInvoiceItem{
			ItemCode:           item.ItemCode,
			ItemName:           item.ItemName,
			ShopifyLineItemID:  item.ShopifyLineItemID,
			ShopifyProductID:   item.ShopifyProductID,
			ShopifyVariantID:   item.ShopifyVariantID,
			Qty:                item.Qty.Neg(),
			Rate:               item.Rate,
			DiscountPercentage: item.DiscountPercentage,
			Warehouse:          item.Warehouse,
			CostCenter:         item.CostCenter,
			SalesOrder:         item.SalesOrder,
		})
	}

	CalculateInvoiceTotals(ret)
	return ret
}

// ZeroLine keeps a return line but makes it worth nothing
func ZeroLine(item *models.SalesInvoiceItem) {
	item.Qty = decimal.Zero
	item.DiscountPercentage = hundred
}

// ApplyBilling adds (sign 1) or removes (sign -1) an invoice's amounts from the
// billed amounts of its sales order and recomputes per_billed. It returns the
// ids of the order lines it changed.
func ApplyBilling(so *models.SalesOrder, si *models.SalesInvoice, sign int64) []uuid.UUID {
	factor := decimal.NewFromInt(sign)
	var changed []uuid.UUID
	for _, line := range si.Items {
		if line.SOItemID == nil {
			continue
		}
		for i := range so.Items {
			if so.Items[i].ID == *line.SOItemID {
				so.Items[i].BilledAmt = so.Items[i].BilledAmt.Add(line.Amount.Mul(factor))
				changed = append(changed, so.Items[i].ID)
			}
		}
	}

	var billed, total decimal.Decimal
	for _, item := range so.Items {
		total = total.Add(item.Amount)
		billed = billed.Add(decimal.Min(item.BilledAmt, item.Amount))
	}
	so.PerBilled = percent(billed, total)
	return changed
}

// ApplyDelivery adds (sign 1) or removes (sign -1) a delivery note's quantities
// from its sales order and recomputes per_delivered
func ApplyDelivery(so *models.SalesOrder, dn *models.DeliveryNote, sign int64) []uuid.UUID {
	factor := decimal.NewFromInt(sign)
	var changed []uuid.UUID
	for _, line := range dn.Items {
		if line.SOItemID == nil {
			continue
		}
		for i := range so.Items {
			if so.Items[i].ID == *line.SOItemID {
				so.Items[i].DeliveredQty = so.Items[i].DeliveredQty.Add(line.Qty.Mul(factor))
				changed = append(changed, so.Items[i].ID)
			}
		}
	}

	var delivered, total decimal.Decimal
	for _, item := range so.Items {
		total = total.Add(item.Qty)
		delivered = delivered.Add(decimal.Min(item.DeliveredQty, item.Qty))
	}
	so.PerDelivered = percent(delivered, total)
	return changed
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	p := part.Div(whole).Mul(hundred).Round(4)
	if p.GreaterThan(hundred) {
		return hundred
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
