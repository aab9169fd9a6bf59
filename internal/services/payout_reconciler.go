package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/erp"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// PayoutSyncResult summarizes one payout sync run
type PayoutSyncResult struct {
	Created []string `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// PayoutReconciler records Shopify Payments payouts, backfills the orders they
// pay for and settles them with a journal entry
type PayoutReconciler struct {
	sc     *SyncContext
	orders *OrderReconciler
}

// NewPayoutReconciler creates a payout reconciler for one sync
func NewPayoutReconciler(sc *SyncContext) *PayoutReconciler {
	return &PayoutReconciler{sc: sc, orders: NewOrderReconciler(sc)}
}

// SyncWindowStart is where a payout sync starts listing: the explicit start
// date, else the shop's last sync, else the first day of the current month
func SyncWindowStart(shop *models.Shop, startDate *time.Time, now time.Time) time.Time {
	if startDate != nil && !startDate.IsZero() {
		return *startDate
	}
	if shop.LastSyncAt != nil && !shop.LastSyncAt.IsZero() {
		return *shop.LastSyncAt
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// Sync records every payout issued since the window start that is not yet
// recorded. Each payout is created in its own transaction. The shop's watermark
// only moves when the whole batch went through.
func (r *PayoutReconciler) Sync(ctx context.Context, startDate *time.Time) (*PayoutSyncResult, error) {
	shop := r.sc.Shop
	log := r.sc.logger()
	startedAt := r.sc.now()

	dateMin := SyncWindowStart(shop, startDate, startedAt)
	payouts, err := r.sc.Client.ListPayouts(ctx, &clients.ListOptions{DateMin: dateMin})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list payouts")
	}

	result := &PayoutSyncResult{}
	for i := range payouts {
		payout := &payouts[i]

		exists, err := r.sc.Store.Payouts.Exists(ctx, shop.ID, payout.ID)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}

		err = r.sc.Store.Transaction(ctx, func(tx *repository.Store) error {
			_, err := NewPayoutReconciler(r.sc.WithStore(tx)).CreatePayout(ctx, payout)
			return err
		})
		if err != nil {
			log.WithError(err).WithField("payout_id", payout.ID).Error("failed to create payout")
			result.Failed = append(result.Failed, payout.ID)
			continue
		}
		result.Created = append(result.Created, payout.ID)
	}

	if len(result.Failed) == 0 {
		if err := r.sc.Store.Shops.UpdateLastSync(ctx, shop.ID, startedAt); err != nil {
			return result, err
		}
		shop.LastSyncAt = &startedAt
	}

	log.WithFields(logrus.Fields{
		"date_min": dateMin.Format(time.RFC3339),
		"created":  len(result.Created),
		"skipped":  result.Skipped,
		"failed":   len(result.Failed),
	}).Info("payout sync finished")
	return result, nil
}

// CreatePayout records a payout with its transactions, creating the documents
// of every order it pays for, then books transaction fees on draft invoices
func (r *PayoutReconciler) CreatePayout(ctx context.Context, payout *clients.Payout) (*models.Payout, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	transactions, err := r.sc.Client.ListPayoutTransactions(ctx, payout.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list transactions of payout %s", payout.ID)
	}

	statuses := map[string]string{}
	for _, txn := range transactions {
		if txn.SourceOrderID == "" {
			continue
		}
		if _, seen := statuses[txn.SourceOrderID]; seen {
			continue
		}
		order, err := r.CreateMissingOrders(ctx, txn.SourceOrderID)
		if err != nil {
			return nil, err
		}
		statuses[txn.SourceOrderID] = ""
		if order != nil {
			statuses[txn.SourceOrderID] = order.FinancialStatus
		}
	}

	record := &models.Payout{
		ShopID:                    shop.ID,
		ShopifyPayoutID:           payout.ID,
		Company:                   shop.Company,
		PayoutDate:                payout.Date,
		Status:                    payout.Status,
		Amount:                    payout.Amount,
		Currency:                  payout.Currency,
		AdjustmentsFeeAmount:      payout.Summary.AdjustmentsFeeAmount,
		AdjustmentsGrossAmount:    payout.Summary.AdjustmentsGrossAmount,
		ChargesFeeAmount:          payout.Summary.ChargesFeeAmount,
		ChargesGrossAmount:        payout.Summary.ChargesGrossAmount,
		RefundsFeeAmount:          payout.Summary.RefundsFeeAmount,
		RefundsGrossAmount:        payout.Summary.RefundsGrossAmount,
		ReservedFundsFeeAmount:    payout.Summary.ReservedFundsFeeAmount,
		ReservedFundsGrossAmount:  payout.Summary.ReservedFundsGrossAmount,
		RetriedPayoutsFeeAmount:   payout.Summary.RetriedPayoutsFeeAmount,
		RetriedPayoutsGrossAmount: payout.Summary.RetriedPayoutsGrossAmount,
		DocStatus:                 models.DocStatusDraft,
	}

	for i, txn := range transactions {
		row := models.PayoutTransaction{
			ShopID:                     shop.ID,
			Idx:                        i + 1,
			TransactionID:              txn.ID,
			TransactionType:            txn.Type,
			ProcessedAt:                txn.ProcessedAt,
			TotalAmount:                txn.Amount,
			Fee:                        txn.Fee,
			NetAmount:                  txn.Net,
			Currency:                   txn.Currency,
			SourceID:                   txn.SourceID,
			SourceType:                 txn.SourceType,
			SourceOrderID:              txn.SourceOrderID,
			SourceOrderTransactionID:   txn.SourceOrderTransactionID,
			SourceOrderFinancialStatus: statuses[txn.SourceOrderID],
		}
		// the bank transfer leaves the Shopify balance
		if row.IsPayout() {
			row.TotalAmount = row.TotalAmount.Neg()
			row.NetAmount = row.NetAmount.Neg()
		}

		if txn.SourceOrderID != "" {
			so, err := docs.FindSalesOrder(ctx, shop.ID, txn.SourceOrderID, "")
			if err != nil {
				return nil, err
			}
			if so != nil {
				row.SalesOrder = so.Name
			}
			si, err := docs.FindSalesInvoice(ctx, shop.ID, txn.SourceOrderID, "")
			if err != nil {
				return nil, err
			}
			if si != nil {
				row.SalesInvoice = si.Name
			}
			notes, err := docs.ListDeliveryNotes(ctx, shop.ID, txn.SourceOrderID)
			if err != nil {
				return nil, err
			}
			if len(notes) > 0 {
				row.DeliveryNote = notes[len(notes)-1].Name
			}
		}
		record.Transactions = append(record.Transactions, row)
	}

	if err := r.sc.Store.Payouts.Create(ctx, record); err != nil {
		return nil, errors.Wrapf(err, "failed to record payout %s", payout.ID)
	}

	if err := r.UpdateInvoiceFees(ctx, record); err != nil {
		return nil, err
	}

	r.sc.logger().WithFields(logrus.Fields{
		"payout_id":    payout.ID,
		"transactions": len(record.Transactions),
	}).Info("recorded payout")
	return record, nil
}

// CreateMissingOrders fetches a paid order and creates whichever of its sales
// order, invoice and delivery notes do not exist yet. It returns nil when the
// order no longer exists on the platform.
func (r *PayoutReconciler) CreateMissingOrders(ctx context.Context, orderID string) (*clients.Order, error) {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	order, err := r.sc.Client.GetOrder(ctx, orderID)
	if err != nil {
		if clients.IsNotFound(err) {
			r.sc.logger().WithField("order_id", orderID).Warn("payout order not found on platform")
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to fetch order %s", orderID)
	}

	so, err := docs.FindSalesOrder(ctx, shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return nil, err
	}
	si, err := docs.FindSalesInvoice(ctx, shop.ID, order.ID, order.OrderNumber)
	if err != nil {
		return nil, err
	}
	notes, err := docs.ListDeliveryNotes(ctx, shop.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if so != nil && si != nil && len(notes) > 0 {
		return order, nil
	}

	if so == nil {
		if so, _, err = r.orders.CreateSalesOrder(ctx, order, ""); err != nil {
			return nil, err
		}
	}
	if si == nil {
		if _, _, err := r.orders.CreateInvoice(ctx, order, so); err != nil {
			return nil, err
		}
	}
	if len(notes) == 0 || so.PerDelivered.LessThan(decimal.NewFromInt(100)) {
		if _, err := r.orders.CreateDeliveries(ctx, order, so); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// UpdateInvoiceFees adds a fee charge per transaction to every draft invoice a
// payout references, then submits the invoice
func (r *PayoutReconciler) UpdateInvoiceFees(ctx context.Context, payout *models.Payout) error {
	shop := r.sc.Shop
	docs := r.sc.Store.Documents

	fees := map[string][]models.TaxCharge{}
	var order []string
	for _, txn := range payout.Transactions {
		if txn.SalesInvoice == "" {
			continue
		}
		if _, seen := fees[txn.SalesInvoice]; !seen {
			order = append(order, txn.SalesInvoice)
			fees[txn.SalesInvoice] = nil
		}
		if txn.Fee.IsZero() {
			continue
		}
		account, err := erp.AccountFor(shop, erp.AccountFee)
		if err != nil {
			return err
		}
		fees[txn.SalesInvoice] = append(fees[txn.SalesInvoice], models.TaxCharge{
			ChargeType:  models.ChargeTypeActual,
			AccountHead: account,
			Description: txn.TransactionType,
			TaxAmount:   txn.Fee.Neg(),
			CostCenter:  shop.CostCenter,
		})
	}

	for _, name := range order {
		si, err := docs.GetSalesInvoice(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "failed to load sales invoice %s", name)
		}
		if si.DocStatus != models.DocStatusDraft {
			continue
		}

		added := fees[name]
		start := len(si.Taxes)
		si.Taxes = append(si.Taxes, added...)
		erp.CalculateInvoiceTotals(si)
		if err := docs.AddInvoiceTaxes(ctx, si, si.Taxes[start:]); err != nil {
			return errors.Wrapf(err, "failed to add fees to sales invoice %s", name)
		}
		if err := docs.UpdateSalesInvoice(ctx, si.ID, map[string]interface{}{
			"total_taxes": si.TotalTaxes,
			"grand_total": si.GrandTotal,
		}); err != nil {
			return err
		}

		if err := r.orders.SubmitInvoice(ctx, si); err != nil {
			return err
		}
	}
	return nil
}

// Submit settles a recorded payout: documents of orders cancelled since are
// cancelled and unlinked, refunded orders get their returns, and the cash
// movement is booked in a journal entry
func (r *PayoutReconciler) Submit(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	payouts := r.sc.Store.Payouts

	payout, err := payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout.DocStatus != models.DocStatusDraft {
		return nil, ErrPayoutSubmitted
	}

	if err := r.cancelOrders(ctx, payout); err != nil {
		return nil, err
	}
	if err := r.createReturns(ctx, payout); err != nil {
		return nil, err
	}

	entry, err := r.createJournalEntry(ctx, payout)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"doc_status": models.DocStatusSubmitted}
	if entry != nil {
		updates["journal_entry"] = entry.Name
		payout.JournalEntry = entry.Name
	}
	if err := payouts.Update(ctx, payout.ID, updates); err != nil {
		return nil, err
	}
	payout.DocStatus = models.DocStatusSubmitted

	r.sc.logger().WithFields(logrus.Fields{
		"payout_id":     payout.ShopifyPayoutID,
		"journal_entry": payout.JournalEntry,
	}).Info("submitted payout")
	return payout, nil
}

func (r *PayoutReconciler) cancelOrders(ctx context.Context, payout *models.Payout) error {
	docs := r.sc.Store.Documents
	cancelled := map[string]bool{}

	for i := range payout.Transactions {
		txn := &payout.Transactions[i]
		if txn.SourceOrderID == "" {
			continue
		}

		isCancelled, seen := cancelled[txn.SourceOrderID]
		if !seen {
			order, err := r.sc.Client.GetOrder(ctx, txn.SourceOrderID)
			if err != nil && !clients.IsNotFound(err) {
				return errors.Wrapf(err, "failed to fetch order %s", txn.SourceOrderID)
			}
			isCancelled = err == nil && order.CancelledAt != nil
			cancelled[txn.SourceOrderID] = isCancelled
		}
		if !isCancelled {
			continue
		}

		var so *models.SalesOrder
		if txn.SalesOrder != "" {
			found, err := docs.GetSalesOrder(ctx, txn.SalesOrder)
			if err != nil {
				return err
			}
			so = found
		}
		if txn.DeliveryNote != "" {
			notes, err := docs.ListDeliveryNotes(ctx, payout.ShopID, txn.SourceOrderID)
			if err != nil {
				return err
			}
			for j := range notes {
				if err := r.orders.CancelDeliveryNote(ctx, &notes[j], so); err != nil {
					return err
				}
			}
		}
		if txn.SalesInvoice != "" {
			si, err := docs.GetSalesInvoice(ctx, txn.SalesInvoice)
			if err != nil {
				return err
			}
			if err := r.orders.CancelInvoice(ctx, si, so); err != nil {
				return err
			}
		}
		if so != nil {
			if err := r.orders.CancelSalesOrder(ctx, so); err != nil {
				return err
			}
		}

		if err := r.sc.Store.Payouts.UpdateTransaction(ctx, txn.ID, map[string]interface{}{
			"sales_order":   "",
			"sales_invoice": "",
			"delivery_note": "",
		}); err != nil {
			return err
		}
		txn.SalesOrder, txn.SalesInvoice, txn.DeliveryNote = "", "", ""
	}
	return nil
}

func (r *PayoutReconciler) createReturns(ctx context.Context, payout *models.Payout) error {
	docs := r.sc.Store.Documents
	done := map[string]bool{}

	for _, txn := range payout.Transactions {
		if txn.SalesInvoice == "" || done[txn.SalesInvoice] {
			continue
		}
		status := txn.SourceOrderFinancialStatus
		if status != clients.FinancialStatusRefunded && status != clients.FinancialStatusPartiallyRefunded {
			continue
		}
		done[txn.SalesInvoice] = true

		si, err := docs.GetSalesInvoice(ctx, txn.SalesInvoice)
		if err != nil {
			return err
		}
		if si.DocStatus != models.DocStatusSubmitted || si.IsReturned() {
			continue
		}
		if _, err := r.orders.CreateSalesReturn(ctx, txn.SourceOrderID, status, si); err != nil {
			return err
		}
	}
	return nil
}

// createJournalEntry books the bank transfer against the receivable of every
// settled invoice. It returns nil when there is nothing to balance.
func (r *PayoutReconciler) createJournalEntry(ctx context.Context, payout *models.Payout) (*models.JournalEntry, error) {
	shop := r.sc.Shop
	store := r.sc.Store
	remark := fmt.Sprintf("Shopify payout %s", payout.ShopifyPayoutID)

	accounts := map[string]*models.Account{}
	account := func(name string) (*models.Account, error) {
		if acc, ok := accounts[name]; ok {
			return acc, nil
		}
		acc, err := store.Accounts.GetByName(ctx, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load account %s", name)
		}
		accounts[name] = acc
		return acc, nil
	}

	var rows []models.JournalEntryAccount
	adjust := func(txn models.PayoutTransaction) error {
		name, err := erp.AccountFor(shop, erp.AccountAdjustment)
		if err != nil {
			return err
		}
		adjustment, err := account(name)
		if err != nil {
			return err
		}
		rows = append(rows, erp.NewAccountingEntry(adjustment, txn.NetAmount, erp.EntryOptions{
			UserRemark: fmt.Sprintf("%s %s", txn.TransactionType, txn.TransactionID),
		}))
		return nil
	}

	for _, txn := range payout.Transactions {
		switch {
		case txn.IsPayout():
			if txn.TotalAmount.IsZero() {
				continue
			}
			name, err := erp.AccountFor(shop, erp.AccountPayout)
			if err != nil {
				return nil, err
			}
			bank, err := account(name)
			if err != nil {
				return nil, err
			}
			// stored negated; the bank receives the positive amount
			rows = append(rows, erp.NewAccountingEntry(bank, txn.NetAmount.Neg(), erp.EntryOptions{UserRemark: remark}))

		case txn.NetAmount.IsZero():
			continue

		case txn.SalesInvoice != "":
			si, err := store.Documents.GetSalesInvoice(ctx, txn.SalesInvoice)
			if err != nil {
				return nil, err
			}
			if si.DocStatus == models.DocStatusCancelled {
				if err := adjust(txn); err != nil {
					return nil, err
				}
				continue
			}
			receivable, err := account(si.DebitTo)
			if err != nil {
				return nil, err
			}
			against := erp.EntryOptions{
				ReferenceType: si.DocType(),
				ReferenceName: si.Name,
				PartyType:     "Customer",
				Party:         si.Customer,
				UserRemark:    remark,
			}
			rows = append(rows, erp.NewAccountingEntry(receivable, txn.NetAmount, against))

			if txn.Fee.IsZero() {
				continue
			}
			feeName, err := erp.AccountFor(shop, erp.AccountFee)
			if err != nil {
				return nil, err
			}
			if invoiceCarriesFee(si, feeName, txn) {
				continue
			}
			// the invoice was submitted before its fee was known
			fee, err := account(feeName)
			if err != nil {
				return nil, err
			}
			rows = append(rows,
				erp.NewAccountingEntry(fee, txn.Fee.Neg(), erp.EntryOptions{
					UserRemark: fmt.Sprintf("%s fee %s", txn.TransactionType, txn.TransactionID),
				}),
				erp.NewAccountingEntry(receivable, txn.Fee, against),
			)

		default:
			// order-linked without a live invoice, or not linked to an order
			if err := adjust(txn); err != nil {
				return nil, err
			}
		}
	}

	if len(rows) <= 1 {
		return nil, nil
	}
	for i := range rows {
		rows[i].Idx = i + 1
	}
	debit, credit := erp.JournalTotals(rows)
	if !debit.Equal(credit) {
		return nil, errors.Wrapf(ErrUnbalancedJournalEntry, "payout %s: debit %s credit %s",
			payout.ShopifyPayoutID, debit.StringFixed(2), credit.StringFixed(2))
	}

	name, err := store.Series.Next(ctx, models.DefaultJournalEntrySeries)
	if err != nil {
		return nil, err
	}
	payoutID := payout.ID
	entry := &models.JournalEntry{
		Name:        name,
		ShopID:      shop.ID,
		PayoutID:    &payoutID,
		Company:     shop.Company,
		PostingDate: r.sc.now(),
		UserRemark:  remark,
		DocStatus:   models.DocStatusSubmitted,
		Accounts:    rows,
		TotalDebit:  debit,
		TotalCredit: credit,
	}

	if err := store.Accounts.CreateJournalEntry(ctx, entry); err != nil {
		return nil, errors.Wrapf(err, "failed to create journal entry for payout %s", payout.ShopifyPayoutID)
	}
	return entry, nil
}

// invoiceCarriesFee reports whether a transaction's fee was already added to
// the invoice as a charge
func invoiceCarriesFee(si *models.SalesInvoice, feeAccount string, txn models.PayoutTransaction) bool {
	for _, tax := range si.Taxes {
		if tax.AccountHead == feeAccount && tax.Description == txn.TransactionType && tax.TaxAmount.Equal(txn.Fee.Neg()) {
			return true
		}
	}
	return false
}
