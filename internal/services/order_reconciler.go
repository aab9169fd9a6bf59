package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/erp"
	"shopify-integration-service/internal/models"
)

const taxDifferenceDescription = "Tax Difference from Order Edits"

// OrderReconciler turns platform orders into sales orders, invoices, returns
// and delivery notes. Every write goes through the sync context's store, so a
// caller that binds the store to a transaction gets all-or-nothing behaviour.
type OrderReconciler struct {
	sc        *SyncContext
	items     *ItemResolver
	customers *CustomerResolver
}

// NewOrderReconciler creates an order reconciler for one sync
func NewOrderReconciler(sc *SyncContext) *OrderReconciler {
	return &OrderReconciler{
		sc:        sc,
		items:     NewItemResolver(sc),
		customers: NewCustomerResolver(sc),
	}
}

// CreateDocuments creates the sales order of a new platform order, then its
// invoice and delivery notes when the order is already paid or fulfilled
func (r *OrderReconciler) CreateDocuments(ctx context.Context, order *clients.Order) Outcome {
	return r.createDocuments(ctx, order, "")
}

func (r *OrderReconciler) createDocuments(ctx context.Context, order *clients.Order, amendedFrom string) Outcome {
	so, created, err := r.CreateSalesOrder(ctx, order, amendedFrom)
	if err != nil {
		return Failed(err)
	}
	if !created {
		return Skipped(so, "")
	}

	if _, _, err := r.CreateInvoice(ctx, order, so); err != nil {
		return Failed(err)
	}
	if _, err := r.CreateDeliveries(ctx, order, so); err != nil {
		return Failed(err)
	}
	return Succeeded(so)
}

// PrepareSalesInvoice makes sure the order has a sales order and invoices it
func (r *OrderReconciler) PrepareSalesInvoice(ctx context.Context, order *clients.Order) Outcome {
	so, _, err := r.CreateSalesOrder(ctx, order, "")
	if err != nil {
		return Failed(err)
	}

	invoice, created, err := r.CreateInvoice(ctx, order, so)
	if err != nil {
		return Failed(err)
	}
	if invoice == nil {
		return Skipped(so, fmt.Sprintf("order %s is not invoiceable", order.ID))
	}
	if !created {
		return Skipped(invoice, "")
	}
	return Succeeded(invoice)
}

// PrepareDeliveryNote makes sure the order has a sales order and records its
// fulfillments as delivery notes
func (r *OrderReconciler) PrepareDeliveryNote(ctx context.Context, order *clients.Order) Outcome {
	so, _, err := r.CreateSalesOrder(ctx, order, "")
	if err != nil {
		return Failed(err)
	}

	notes, err := r.CreateDeliveries(ctx, order, so)
	if err != nil {
		return Failed(err)
	}
	if len(notes) == 0 {
		return Skipped(so, fmt.Sprintf("no new fulfillments on order %s", order.ID))
	}
	return Succeeded(&notes[len(notes)-1])
}

// CreateSalesOrder returns the live sales order of the platform order, creating
// and submitting it when there is none. The bool reports whether it was created.
func (r *OrderReconciler) CreateSalesOrder(ctx context.Context, order *clients.Order, amendedFrom string) (*models.SalesOrder, bool, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	existing, err := docs.FindSalesOrder(ctx, shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	customer, err := r.customers.ResolveOrCreate(ctx, order.Customer)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to resolve customer of order %s", order.ID)
	}
	codes, err := r.items.EnsureOrderItems(ctx, order)
	if err != nil {
		return nil, false, err
	}

	so := &models.SalesOrder{
		ShopID:             shop.ID,
		ShopifyOrderID:     order.ID,
		ShopifyOrderNumber: order.OrderNumber,
		Customer:           customer,
		Company:            shop.Company,
		Currency:           order.Currency,
		TransactionDate:    order.CreatedAt,
		DeliveryDate:       order.CreatedAt,
		SellingPriceList:   shop.PriceList,
		ApplyDiscountOn:    models.DiscountOnGrandTotal,
		DocStatus:          models.DocStatusDraft,
		AmendedFrom:        amendedFrom,
	}
	if order.CurrentTotalDiscounts != nil {
		so.DiscountAmount = *order.CurrentTotalDiscounts
	}

	for _, line := range order.LineItems {
		qty := lineQuantity(order, line)
		if qty <= 0 {
			continue
		}
		so.Items = append(so.Items, models.SalesOrderItem{
			ItemCode:          codes[line.ID],
			ItemName:          line.Title,
			ShopifyLineItemID: line.ID,
			ShopifyProductID:  line.ProductID,
			ShopifyVariantID:  line.VariantID,
			Qty:               decimal.NewFromInt(int64(qty)),
			Rate:              line.Price,
			Warehouse:         shop.Warehouse,
		})
	}
	if len(so.Items) == 0 {
		return nil, false, errors.Errorf("order %s has no open lines", order.ID)
	}

	so.Taxes, err = r.orderTaxes(order)
	if err != nil {
		return nil, false, err
	}

	erp.CalculateSalesOrderTotals(so)
	if err := erp.CheckSubmit(so, so.DocStatus); err != nil {
		return nil, false, err
	}
	so.Name, err = r.sc.Store.Series.Next(ctx, shop.OrderSeries())
	if err != nil {
		return nil, false, err
	}
	so.DocStatus = models.DocStatusSubmitted

	if err := docs.CreateSalesOrder(ctx, so); err != nil {
		return nil, false, errors.Wrapf(err, "failed to create sales order for order %s", order.ID)
	}

	r.sc.logger().WithFields(logrus.Fields{
		"order_id":    order.ID,
		"sales_order": so.Name,
	}).Info("created sales order")
	return so, true, nil
}

// lineQuantity is the fulfillable quantity. Lines that are fully fulfilled
// already report zero there, so they fall back to the ordered quantity.
func lineQuantity(order *clients.Order, line clients.LineItem) int {
	if qty := line.OrderedQuantity(); qty > 0 {
		return qty
	}
	for _, f := range order.Fulfillments {
		for _, fl := range f.LineItems {
			if fl.ID == line.ID {
				return line.Quantity
			}
		}
	}
	return 0
}

// orderTaxes builds shipping and tax charges plus the correction line that
// reconciles them with the order's current total tax
func (r *OrderReconciler) orderTaxes(order *clients.Order) ([]models.TaxCharge, error) {
	shop := r.sc.Shop
	var taxes []models.TaxCharge

	for _, shipping := range order.ShippingLines {
		if shipping.Price.IsZero() {
			continue
		}
		account, err := erp.AccountFor(shop, erp.AccountShipping)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, models.TaxCharge{
			ChargeType:  models.ChargeTypeActual,
			AccountHead: account,
			Description: shipping.Title,
			TaxAmount:   shipping.Price,
			CostCenter:  shop.CostCenter,
		})
	}

	for _, tax := range order.TaxLines {
		account, err := erp.AccountFor(shop, erp.AccountTax)
		if err != nil {
			return nil, err
		}
		description := tax.Title
		if tax.Rate != nil && !tax.Rate.IsZero() {
			description = fmt.Sprintf("%s - %s%%", tax.Title, tax.Rate.Mul(decimal.NewFromInt(100)).String())
		}
		taxes = append(taxes, models.TaxCharge{
			ChargeType:          models.ChargeTypeActual,
			AccountHead:         account,
			Description:         description,
			TaxAmount:           tax.Price,
			IncludedInPrintRate: order.TaxesIncluded,
			CostCenter:          shop.CostCenter,
		})
	}

	// the sum includes shipping; order edits leave no other trace of tax changes
	current := order.TotalTax
	if order.CurrentTotalTax != nil {
		current = *order.CurrentTotalTax
	}
	sum := decimal.Zero
	for _, t := range taxes {
		sum = sum.Add(t.TaxAmount)
	}
	if diff := current.Sub(sum); !diff.IsZero() {
		account, err := erp.AccountFor(shop, erp.AccountTax)
		if err != nil {
			return nil, err
		}
		taxes = append(taxes, models.TaxCharge{
			ChargeType:  models.ChargeTypeActual,
			AccountHead: account,
			Description: taxDifferenceDescription,
			TaxAmount:   diff,
			CostCenter:  shop.CostCenter,
		})
	}
	return taxes, nil
}

// CreateInvoice returns the live invoice of a paid order, deriving one from
// the sales order when there is none. A nil invoice means the order is not
// invoiceable yet. Refunded orders also get their sales return.
func (r *OrderReconciler) CreateInvoice(ctx context.Context, order *clients.Order, so *models.SalesOrder) (*models.SalesInvoice, bool, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	if !order.IsInvoiceable() || !shop.SyncSalesInvoice {
		return nil, false, nil
	}

	existing, err := docs.FindSalesInvoice(ctx, shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if err := r.returnIfRefunded(ctx, order, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if so.DocStatus != models.DocStatusSubmitted || so.PerBilled.IsPositive() {
		return nil, false, nil
	}

	si := erp.MakeSalesInvoice(so)
	si.ShopifyOrderNumber = order.OrderNumber
	si.PostingDate = order.CreatedAt
	si.Currency = order.Currency
	si.DebitTo = shop.ReceivableAccount
	for i := range si.Items {
		si.Items[i].CostCenter = shop.CostCenter
	}
	for i := range si.Taxes {
		si.Taxes[i].CostCenter = shop.CostCenter
	}
	erp.CalculateInvoiceTotals(si)

	si.Name, err = r.sc.Store.Series.Next(ctx, shop.InvoiceSeries())
	if err != nil {
		return nil, false, err
	}
	if err := docs.CreateSalesInvoice(ctx, si); err != nil {
		return nil, false, errors.Wrapf(err, "failed to create sales invoice for order %s", order.ID)
	}

	if !shop.DeferInvoiceSubmission {
		if err := r.SubmitInvoice(ctx, si); err != nil {
			return nil, false, err
		}
		if err := r.returnIfRefunded(ctx, order, si); err != nil {
			return nil, false, err
		}
	}

	r.sc.logger().WithFields(logrus.Fields{
		"order_id":      order.ID,
		"sales_invoice": si.Name,
	}).Info("created sales invoice")
	return si, true, nil
}

func (r *OrderReconciler) returnIfRefunded(ctx context.Context, order *clients.Order, si *models.SalesInvoice) error {
	if !order.IsRefunded() || si.DocStatus != models.DocStatusSubmitted || si.IsReturned() {
		return nil
	}
	_, err := r.CreateSalesReturn(ctx, order.ID, order.FinancialStatus, si)
	return err
}

// SubmitInvoice submits a draft invoice and bills its sales order
func (r *OrderReconciler) SubmitInvoice(ctx context.Context, si *models.SalesInvoice) error {
	docs := r.sc.Store.Documents

	if err := erp.CheckSubmit(si, si.DocStatus); err != nil {
		return err
	}
	si.DocStatus = models.DocStatusSubmitted
	si.Status = erp.SubmittedInvoiceStatus(si)
	if err := docs.UpdateSalesInvoice(ctx, si.ID, map[string]interface{}{
		"doc_status": si.DocStatus,
		"status":     si.Status,
	}); err != nil {
		return errors.Wrapf(err, "failed to submit sales invoice %s", si.Name)
	}

	if si.IsReturn || si.SalesOrder == "" {
		return nil
	}
	so, err := docs.GetSalesOrder(ctx, si.SalesOrder)
	if err != nil {
		return errors.Wrapf(err, "failed to load sales order %s", si.SalesOrder)
	}
	changed := erp.ApplyBilling(so, si, 1)
	return r.saveBilling(ctx, so, changed)
}

func (r *OrderReconciler) saveBilling(ctx context.Context, so *models.SalesOrder, changed []uuid.UUID) error {
	docs := r.sc.Store.Documents
	for _, item := range so.Items {
		if !containsID(changed, item.ID) {
			continue
		}
		if err := docs.UpdateSalesOrderItem(ctx, item.ID, map[string]interface{}{"billed_amt": item.BilledAmt}); err != nil {
			return err
		}
	}
	return docs.UpdateSalesOrder(ctx, so.ID, map[string]interface{}{"per_billed": so.PerBilled})
}

func (r *OrderReconciler) saveDelivery(ctx context.Context, so *models.SalesOrder, changed []uuid.UUID) error {
	docs := r.sc.Store.Documents
	for _, item := range so.Items {
		if !containsID(changed, item.ID) {
			continue
		}
		if err := docs.UpdateSalesOrderItem(ctx, item.ID, map[string]interface{}{"delivered_qty": item.DeliveredQty}); err != nil {
			return err
		}
	}
	return docs.UpdateSalesOrder(ctx, so.ID, map[string]interface{}{"per_delivered": so.PerDelivered})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// CreateSalesReturn issues the credit note of a refunded order against its
// submitted invoice. It returns nil when the platform reports no dated refund.
func (r *OrderReconciler) CreateSalesReturn(ctx context.Context, orderID, financialStatus string, si *models.SalesInvoice) (*models.SalesInvoice, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	returns, err := docs.ListReturns(ctx, si.Name)
	if err != nil {
		return nil, err
	}
	if len(returns) > 0 {
		return &returns[0], nil
	}

	refunds, err := r.sc.Client.ListRefunds(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch refunds of order %s", orderID)
	}

	var refundedAt *time.Time
	for i := range refunds {
		at := refunds[i].RefundedAt()
		if at != nil && (refundedAt == nil || at.Before(*refundedAt)) {
			refundedAt = at
		}
	}
	if refundedAt == nil {
		return nil, nil
	}

	ret := erp.MakeSalesReturn(si, *refundedAt)
	if financialStatus == clients.FinancialStatusPartiallyRefunded {
		if err := r.prorateReturn(ret, refunds); err != nil {
			return nil, err
		}
	}
	for i := range ret.Taxes {
		ret.Taxes[i].CostCenter = shop.CostCenter
	}
	erp.CalculateInvoiceTotals(ret)

	ret.Name, err = r.sc.Store.Series.Next(ctx, shop.InvoiceSeries())
	if err != nil {
		return nil, err
	}
	if err := docs.CreateSalesInvoice(ctx, ret); err != nil {
		return nil, errors.Wrapf(err, "failed to create sales return against %s", si.Name)
	}
	if err := r.SubmitInvoice(ctx, ret); err != nil {
		return nil, err
	}

	si.Status = models.InvoiceStatusCreditNote
	if err := docs.UpdateSalesInvoice(ctx, si.ID, map[string]interface{}{"status": si.Status}); err != nil {
		return nil, err
	}

	r.sc.logger().WithFields(logrus.Fields{
		"order_id":      orderID,
		"sales_invoice": si.Name,
		"sales_return":  ret.Name,
	}).Info("created sales return")
	return ret, nil
}

// prorateReturn zeroes every return line no refund references and replaces the
// taxes with the refunds' order adjustments
func (r *OrderReconciler) prorateReturn(ret *models.SalesInvoice, refunds []clients.Refund) error {
	lineIDs := map[string]bool{}
	variantIDs := map[string]bool{}
	productIDs := map[string]bool{}
	var adjustments []clients.OrderAdjustment

	for _, refund := range refunds {
		for _, rli := range refund.RefundLineItems {
			if rli.LineItemID != "" {
				lineIDs[rli.LineItemID] = true
			}
			if rli.LineItem.ID != "" {
				lineIDs[rli.LineItem.ID] = true
			}
			if rli.LineItem.VariantID != "" {
				variantIDs[rli.LineItem.VariantID] = true
			}
			if rli.LineItem.ProductID != "" {
				productIDs[rli.LineItem.ProductID] = true
			}
		}
		adjustments = append(adjustments, refund.OrderAdjustments...)
	}

	for i := range ret.Items {
		item := &ret.Items[i]
		switch {
		case item.ShopifyLineItemID != "" && lineIDs[item.ShopifyLineItemID]:
		case item.ShopifyVariantID != "" && variantIDs[item.ShopifyVariantID]:
		case item.ShopifyProductID != "" && productIDs[item.ShopifyProductID]:
		default:
			erp.ZeroLine(item)
		}
	}

	ret.Taxes = nil
	if len(adjustments) == 0 {
		return nil
	}
	account, err := erp.AccountFor(r.sc.Shop, erp.AccountRefund)
	if err != nil {
		return err
	}
	for _, adj := range adjustments {
		ret.Taxes = append(ret.Taxes, models.TaxCharge{
			ChargeType:  models.ChargeTypeActual,
			AccountHead: account,
			Description: adj.Reason,
			TaxAmount:   adj.Amount,
		})
	}
	return nil
}

// CreateDeliveries creates one submitted delivery note per fulfillment that
// has none yet
func (r *OrderReconciler) CreateDeliveries(ctx context.Context, order *clients.Order, so *models.SalesOrder) ([]models.DeliveryNote, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	if !shop.SyncDeliveryNote || so.DocStatus != models.DocStatusSubmitted || len(order.Fulfillments) == 0 {
		return nil, nil
	}

	orderName := order.Name
	if idx := strings.LastIndex(orderName, "#"); idx >= 0 {
		orderName = orderName[idx+1:]
	}

	var notes []models.DeliveryNote
	for _, fulfillment := range order.Fulfillments {
		existing, err := docs.FindDeliveryNote(ctx, shop.ID, fulfillment.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		dn := erp.MakeDeliveryNote(so, fulfillment.CreatedAt)
		dn.ShopifyOrderName = orderName
		dn.ShopifyFulfillmentID = fulfillment.ID
		r.applyFulfillment(ctx, dn, so, order, fulfillment)
		if len(dn.Items) == 0 {
			continue
		}
		erp.CalculateDeliveryTotals(dn)

		if err := erp.CheckSubmit(dn, dn.DocStatus); err != nil {
			return nil, err
		}
		dn.Name, err = r.sc.Store.Series.Next(ctx, shop.DeliverySeries())
		if err != nil {
			return nil, err
		}
		dn.DocStatus = models.DocStatusSubmitted
		if err := docs.CreateDeliveryNote(ctx, dn); err != nil {
			return nil, errors.Wrapf(err, "failed to create delivery note for fulfillment %s", fulfillment.ID)
		}

		changed := erp.ApplyDelivery(so, dn, 1)
		if err := r.saveDelivery(ctx, so, changed); err != nil {
			return nil, err
		}

		r.sc.logger().WithFields(logrus.Fields{
			"order_id":       order.ID,
			"fulfillment_id": fulfillment.ID,
			"delivery_note":  dn.Name,
		}).Info("created delivery note")
		notes = append(notes, *dn)
	}
	return notes, nil
}

// applyFulfillment sets delivery quantities from the fulfillment's lines. A
// line is matched by line id, then variant, then product, then resolved item
// code. Each delivery line takes at most its open quantity and lines nothing
// was shipped for are dropped.
func (r *OrderReconciler) applyFulfillment(ctx context.Context, dn *models.DeliveryNote, so *models.SalesOrder, order *clients.Order, fulfillment clients.Fulfillment) {
	soItems := make(map[uuid.UUID]*models.SalesOrderItem, len(so.Items))
	for i := range so.Items {
		soItems[so.Items[i].ID] = &so.Items[i]
	}

	open := make([]decimal.Decimal, len(dn.Items))
	shipped := make([]decimal.Decimal, len(dn.Items))
	for i := range dn.Items {
		open[i] = dn.Items[i].Qty
		shipped[i] = decimal.Zero
	}

	for _, fl := range fulfillment.LineItems {
		qty := decimal.NewFromInt(int64(fl.Quantity))
		if !qty.IsPositive() {
			continue
		}
		match := r.fulfillmentMatch(ctx, dn.Items, soItems, order, fl)
		if match == nil {
			r.sc.logger().WithFields(logrus.Fields{
				"fulfillment_id": fulfillment.ID,
				"line_item_id":   fl.ID,
			}).Warn("fulfillment line matches no order line")
			continue
		}
		for i := range dn.Items {
			if !qty.IsPositive() {
				break
			}
			if !match(&dn.Items[i]) {
				continue
			}
			take := decimal.Min(qty, open[i])
			open[i] = open[i].Sub(take)
			shipped[i] = shipped[i].Add(take)
			qty = qty.Sub(take)
		}
	}

	kept := dn.Items[:0]
	for i, item := range dn.Items {
		if !shipped[i].IsPositive() {
			continue
		}
		item.Qty = shipped[i]
		item.AllowZeroValuationRate = true
		kept = append(kept, item)
	}
	dn.Items = kept
}

type deliveryLineMatch func(item *models.DeliveryNoteItem) bool

// fulfillmentMatch picks how a fulfillment line finds its delivery lines, or
// nil when it finds none
func (r *OrderReconciler) fulfillmentMatch(
	ctx context.Context,
	items []models.DeliveryNoteItem,
	soItems map[uuid.UUID]*models.SalesOrderItem,
	order *clients.Order,
	fl clients.LineItem,
) deliveryLineMatch {
	orderLine := func(item *models.DeliveryNoteItem) *models.SalesOrderItem {
		if item.SOItemID == nil {
			return nil
		}
		return soItems[*item.SOItemID]
	}

	var candidates []deliveryLineMatch
	if fl.ID != "" {
		candidates = append(candidates, func(item *models.DeliveryNoteItem) bool {
			return item.ShopifyLineItemID == fl.ID
		})
	}
	if fl.VariantID != "" {
		candidates = append(candidates, func(item *models.DeliveryNoteItem) bool {
			line := orderLine(item)
			return line != nil && line.ShopifyVariantID == fl.VariantID
		})
	}
	if fl.ProductID != "" {
		candidates = append(candidates, func(item *models.DeliveryNoteItem) bool {
			line := orderLine(item)
			return line != nil && line.ShopifyProductID == fl.ProductID
		})
	}
	for _, match := range candidates {
		if anyDeliveryLine(items, match) {
			return match
		}
	}

	if fl.VariantID != "" || fl.ProductID != "" || fl.SKU != "" || strings.TrimSpace(fl.Title) != "" {
		code, err := r.items.ResolveOrCreate(ctx, fl)
		if err != nil {
			r.sc.logger().WithError(err).WithField("line_item_id", fl.ID).Warn("failed to resolve fulfillment line")
			return nil
		}
		match := func(item *models.DeliveryNoteItem) bool { return item.ItemCode == code }
		if anyDeliveryLine(items, match) {
			return match
		}
		return nil
	}

	// a bare quantity can only belong to a single-line order
	if fl.ID == "" && len(order.LineItems) == 1 && len(items) == 1 {
		return func(*models.DeliveryNoteItem) bool { return true }
	}
	return nil
}

func anyDeliveryLine(items []models.DeliveryNoteItem, match deliveryLineMatch) bool {
	for i := range items {
		if match(&items[i]) {
			return true
		}
	}
	return false
}

// CancelOrder cancels the submitted delivery notes, invoices and sales order of
// a platform order, in that order. A failure on one document is logged and the
// rest are still cancelled.
func (r *OrderReconciler) CancelOrder(ctx context.Context, order *clients.Order) Outcome {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents
	log := r.sc.logger().WithField("order_id", order.ID)

	so, err := docs.FindSalesOrder(ctx, shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return Failed(err)
	}
	notes, err := docs.ListDeliveryNotes(ctx, shop.ID, order.ID)
	if err != nil {
		return Failed(err)
	}
	invoices, err := docs.ListSalesInvoices(ctx, shop.ID, order.ID)
	if err != nil {
		return Failed(err)
	}

	var failures []string
	for i := range notes {
		if err := r.CancelDeliveryNote(ctx, &notes[i], so); err != nil {
			log.WithError(err).WithField("delivery_note", notes[i].Name).Error("failed to cancel delivery note")
			failures = append(failures, err.Error())
		}
	}
	for i := range invoices {
		if invoices[i].IsReturn {
			continue
		}
		if err := r.CancelInvoice(ctx, &invoices[i], so); err != nil {
			log.WithError(err).WithField("sales_invoice", invoices[i].Name).Error("failed to cancel sales invoice")
			failures = append(failures, err.Error())
		}
	}
	if so != nil {
		if err := r.CancelSalesOrder(ctx, so); err != nil {
			log.WithError(err).WithField("sales_order", so.Name).Error("failed to cancel sales order")
			failures = append(failures, err.Error())
		}
	}

	if err := r.sc.Store.Payouts.UpdateFinancialStatusForOrder(ctx, shop.ID, order.ID, order.FinancialStatus); err != nil {
		return Failed(err)
	}

	if so == nil && len(notes) == 0 && len(invoices) == 0 {
		return Skipped(nil, fmt.Sprintf("no documents to cancel for order %s", order.ID))
	}
	outcome := Succeeded(nil)
	if so != nil {
		outcome.Doc = so
	}
	outcome.Message = fmt.Sprintf("cancelled documents of order %s", order.ID)
	if len(failures) > 0 {
		outcome.Message = fmt.Sprintf("cancelled order %s with errors: %s", order.ID, strings.Join(failures, "; "))
	}
	return outcome
}

// CancelDeliveryNote cancels a submitted delivery note and takes its
// quantities off the sales order. Other states are left alone.
func (r *OrderReconciler) CancelDeliveryNote(ctx context.Context, dn *models.DeliveryNote, so *models.SalesOrder) error {
	if dn.DocStatus != models.DocStatusSubmitted {
		return nil
	}
	if err := erp.CheckCancel(dn, dn.DocStatus); err != nil {
		return err
	}
	docs := r.sc.Store.Documents
	if err := docs.UpdateDeliveryNote(ctx, dn.ID, map[string]interface{}{"doc_status": models.DocStatusCancelled}); err != nil {
		return errors.Wrapf(err, "failed to cancel delivery note %s", dn.Name)
	}
	dn.DocStatus = models.DocStatusCancelled

	if so == nil || so.Name != dn.SalesOrder {
		return nil
	}
	changed := erp.ApplyDelivery(so, dn, -1)
	return r.saveDelivery(ctx, so, changed)
}

// CancelInvoice cancels a submitted, non-returned invoice and unbills its
// sales order. Other states are left alone.
func (r *OrderReconciler) CancelInvoice(ctx context.Context, si *models.SalesInvoice, so *models.SalesOrder) error {
	if si.DocStatus != models.DocStatusSubmitted || si.IsReturned() {
		return nil
	}
	if err := erp.CheckCancel(si, si.DocStatus); err != nil {
		return err
	}
	docs := r.sc.Store.Documents
	if err := docs.UpdateSalesInvoice(ctx, si.ID, map[string]interface{}{
		"doc_status": models.DocStatusCancelled,
		"status":     models.InvoiceStatusCancelled,
	}); err != nil {
		return errors.Wrapf(err, "failed to cancel sales invoice %s", si.Name)
	}
	si.DocStatus = models.DocStatusCancelled
	si.Status = models.InvoiceStatusCancelled

	if so == nil || so.Name != si.SalesOrder {
		return nil
	}
	if len(si.Items) == 0 {
		full, err := docs.GetSalesInvoice(ctx, si.Name)
		if err != nil {
			return err
		}
		si.Items = full.Items
	}
	changed := erp.ApplyBilling(so, si, -1)
	return r.saveBilling(ctx, so, changed)
}

// CancelSalesOrder cancels a submitted sales order
func (r *OrderReconciler) CancelSalesOrder(ctx context.Context, so *models.SalesOrder) error {
	if so.DocStatus != models.DocStatusSubmitted {
		return nil
	}
	if err := erp.CheckCancel(so, so.DocStatus); err != nil {
		return err
	}
	if err := r.sc.Store.Documents.UpdateSalesOrder(ctx, so.ID, map[string]interface{}{"doc_status": models.DocStatusCancelled}); err != nil {
		return errors.Wrapf(err, "failed to cancel sales order %s", so.Name)
	}
	so.DocStatus = models.DocStatusCancelled
	return nil
}

// UpdateOrder amends an edited order: its documents are cancelled and a new
// sales order is created from the fresh order, pointing at the cancelled one
func (r *OrderReconciler) UpdateOrder(ctx context.Context, order *clients.Order) Outcome {
	existing, err := r.sc.Store.Documents.FindSalesOrder(ctx, r.sc.Shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return Failed(err)
	}
	if existing == nil {
		return Skipped(nil, fmt.Sprintf("no sales order to amend for order %s", order.ID))
	}

	if cancelled := r.CancelOrder(ctx, order); cancelled.Err != nil {
		return cancelled
	}
	return r.createDocuments(ctx, order, existing.Name)
}
