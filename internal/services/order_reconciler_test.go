package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

func TestCreateDocumentsPaidAndFulfilledOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")
	client := &MockPlatformClient{}

	r := NewOrderReconciler(newSyncContext(shop, client, store))
	outcome := r.CreateDocuments(ctx, paidOrder())
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	so, err := store.Documents.FindSalesOrder(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, so)
	assert.Equal(t, "SO-Shopify-00001", so.Name)
	assert.Equal(t, "9", so.Customer)
	assert.Equal(t, models.DocStatusSubmitted, so.DocStatus)
	assert.True(t, dec("20").Equal(so.GrandTotal), so.GrandTotal.String())
	assert.True(t, dec("100").Equal(so.PerBilled), so.PerBilled.String())
	assert.True(t, dec("100").Equal(so.PerDelivered), so.PerDelivered.String())
	require.Len(t, so.Items, 1)
	assert.Equal(t, "MUG", so.Items[0].ItemCode)
	assert.True(t, dec("2").Equal(so.Items[0].Qty))

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, si)
	assert.Equal(t, "SI-Shopify-00001", si.Name)
	assert.Equal(t, so.Name, si.SalesOrder)
	assert.Equal(t, models.DocStatusSubmitted, si.DocStatus)
	assert.Equal(t, models.InvoiceStatusUnpaid, si.Status)
	assert.Equal(t, "Debtors - A", si.DebitTo)
	assert.True(t, dec("20").Equal(si.GrandTotal))

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "321", notes[0].ShopifyFulfillmentID)
	assert.Equal(t, "1001", notes[0].ShopifyOrderName)
	require.Len(t, notes[0].Items, 1)
	assert.True(t, dec("2").Equal(notes[0].Items[0].Qty))

	customer, err := store.Customers.FindByShopifyID(ctx, "9")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Ada Lovelace", customer.CustomerName)

	client.AssertNotCalled(t, "ListRefunds", mock.Anything, mock.Anything)
}

func TestCreateDocumentsWithBareFulfillmentLine(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")
	require.NoError(t, store.Customers.Create(ctx, &models.Customer{
		Name:              "9",
		CustomerName:      "Ada Lovelace",
		ShopifyCustomerID: "9",
		CustomerGroup:     "Individual",
	}))

	order := &clients.Order{
		ID:              "555",
		Currency:        "USD",
		FinancialStatus: clients.FinancialStatusPaid,
		Customer:        &clients.Customer{ID: "9"},
		LineItems:       []clients.LineItem{{VariantID: "77", Quantity: 2, Price: dec("10.00")}},
		Fulfillments: []clients.Fulfillment{{
			ID:        "321",
			CreatedAt: testNow,
			LineItems: []clients.LineItem{{Quantity: 2}},
		}},
		CreatedAt: testNow.Add(-time.Hour),
	}

	client := &MockPlatformClient{}
	r := NewOrderReconciler(newSyncContext(shop, client, store))
	outcome := r.CreateDocuments(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	so, err := store.Documents.FindSalesOrder(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, so)
	require.Len(t, so.Items, 1)
	assert.True(t, dec("2").Equal(so.Items[0].Qty))
	assert.True(t, dec("10").Equal(so.Items[0].Rate))
	assert.True(t, dec("20").Equal(so.GrandTotal), so.GrandTotal.String())
	assert.True(t, dec("100").Equal(so.PerBilled), so.PerBilled.String())

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, si)
	assert.True(t, dec("20").Equal(si.GrandTotal))

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "321", notes[0].ShopifyFulfillmentID)
	require.Len(t, notes[0].Items, 1)
	assert.True(t, dec("2").Equal(notes[0].Items[0].Qty))

	client.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestDeliverySplitsQuantityAcrossLinesOfOneItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.LineItems = []clients.LineItem{
		{ID: "l1", ProductID: "7", VariantID: "77", Title: "Mug", Quantity: 1, Price: dec("10")},
		{ID: "l2", ProductID: "7", VariantID: "77", Title: "Mug", Quantity: 1, Price: dec("10")},
	}
	order.Fulfillments = []clients.Fulfillment{{
		ID:        "321",
		CreatedAt: testNow,
		LineItems: []clients.LineItem{{VariantID: "77", Quantity: 1}},
	}}

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	outcome := r.CreateDocuments(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Len(t, notes[0].Items, 1, "one shipped unit covers one line")
	assert.True(t, dec("1").Equal(notes[0].Items[0].Qty))
	assert.True(t, dec("1").Equal(notes[0].TotalQty), notes[0].TotalQty.String())
}

func TestUnresolvableFulfillmentLineIsSkipped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.Fulfillments[0].LineItems = append(order.Fulfillments[0].LineItems, clients.LineItem{ProductID: "99", Quantity: 1})

	client := &MockPlatformClient{}
	client.On("GetProduct", mock.Anything, "99").Return(nil, &clients.APIError{StatusCode: 404, Body: "Not Found"})
	r := NewOrderReconciler(newSyncContext(shop, client, store))
	outcome := r.CreateDocuments(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Len(t, notes[0].Items, 1)
	assert.True(t, dec("2").Equal(notes[0].Items[0].Qty))
}

func TestCreateDocumentsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	first := r.CreateDocuments(ctx, paidOrder())
	require.Equal(t, OutcomeSucceeded, first.Status, first.Summary())

	second := r.CreateDocuments(ctx, paidOrder())
	assert.Equal(t, OutcomeSkipped, second.Status)
	require.NotNil(t, second.Doc)
	assert.Equal(t, first.Doc.DocName(), second.Doc.DocName())
	assert.Contains(t, second.Summary(), "already exists")

	invoices, err := store.Documents.ListSalesInvoices(ctx, shop.ID, "555")
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestPrepareDeliveryNoteOnePerFulfillment(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")
	createTestItem(t, store, "CAP", "8", "88")

	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusPending
	order.LineItems = append(order.LineItems, clients.LineItem{
		ID: "l2", ProductID: "8", VariantID: "88", Title: "Cap", Quantity: 1, Price: dec("5"),
	})
	order.Fulfillments = []clients.Fulfillment{
		{ID: "f1", CreatedAt: testNow, LineItems: []clients.LineItem{{ID: "l1", VariantID: "77", Quantity: 2}}},
		{ID: "f2", CreatedAt: testNow, LineItems: []clients.LineItem{{ID: "l2", VariantID: "88", Quantity: 1}}},
	}

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	outcome := r.PrepareDeliveryNote(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	require.Len(t, notes, 2)

	byFulfillment := map[string]models.DeliveryNote{}
	for _, n := range notes {
		byFulfillment[n.ShopifyFulfillmentID] = n
	}
	require.Len(t, byFulfillment["f1"].Items, 1)
	assert.Equal(t, "MUG", byFulfillment["f1"].Items[0].ItemCode)
	assert.True(t, dec("2").Equal(byFulfillment["f1"].Items[0].Qty))
	require.Len(t, byFulfillment["f2"].Items, 1)
	assert.Equal(t, "CAP", byFulfillment["f2"].Items[0].ItemCode)
	assert.True(t, dec("1").Equal(byFulfillment["f2"].Items[0].Qty))

	invoice, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	assert.Nil(t, invoice, "unpaid orders are not invoiced")

	again := r.PrepareDeliveryNote(ctx, order)
	assert.Equal(t, OutcomeSkipped, again.Status)
}

func TestOrderTaxesAddEditDifferenceOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	rate := dec("0.1")
	current := dec("3")
	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusPending
	order.Fulfillments = nil
	order.TaxLines = []clients.TaxLine{{Title: "VAT", Rate: &rate, Price: dec("2")}}
	order.TotalTax = dec("2")
	order.CurrentTotalTax = &current

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	so, created, err := r.CreateSalesOrder(ctx, order, "")
	require.NoError(t, err)
	require.True(t, created)

	var differences int
	for _, tax := range so.Taxes {
		if tax.Description == taxDifferenceDescription {
			differences++
			assert.True(t, dec("1").Equal(tax.TaxAmount), tax.TaxAmount.String())
			assert.Equal(t, "Output Tax - A", tax.AccountHead)
		}
	}
	assert.Equal(t, 1, differences)
	assert.Equal(t, "VAT - 10%", so.Taxes[0].Description)
	assert.True(t, dec("23").Equal(so.GrandTotal), so.GrandTotal.String())
}

func TestOrderTaxesWithoutEditsHaveNoDifference(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusPending
	order.TaxLines = []clients.TaxLine{{Title: "VAT", Price: dec("2")}}
	order.TotalTax = dec("2")

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	so, _, err := r.CreateSalesOrder(ctx, order, "")
	require.NoError(t, err)
	require.Len(t, so.Taxes, 1)
	assert.Equal(t, "VAT", so.Taxes[0].Description)
}

func TestPartialRefundProratesReturn(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")
	createTestItem(t, store, "CAP", "8", "88")

	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusPartiallyRefunded
	order.Fulfillments = nil
	order.LineItems = append(order.LineItems, clients.LineItem{
		ID: "l2", ProductID: "8", VariantID: "88", Title: "Cap", Quantity: 1, Price: dec("5"),
	})

	refundedAt := testNow.Add(-30 * time.Minute)
	client := &MockPlatformClient{}
	client.On("ListRefunds", mock.Anything, "555").Return([]clients.Refund{{
		ID:          "r1",
		OrderID:     "555",
		ProcessedAt: &refundedAt,
		RefundLineItems: []clients.RefundLineItem{
			{ID: "rl1", LineItemID: "l1", Quantity: 2, LineItem: clients.LineItem{ID: "l1", VariantID: "77"}},
		},
		OrderAdjustments: []clients.OrderAdjustment{
			{ID: "a1", Kind: "refund_discrepancy", Reason: "Refund discrepancy", Amount: dec("-1")},
		},
	}}, nil).Once()

	r := NewOrderReconciler(newSyncContext(shop, client, store))
	outcome := r.CreateDocuments(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, si)
	assert.Equal(t, models.InvoiceStatusCreditNote, si.Status)

	returns, err := store.Documents.ListReturns(ctx, si.Name)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	ret := returns[0]
	assert.True(t, ret.IsReturn)
	assert.Equal(t, models.DocStatusSubmitted, ret.DocStatus)
	assert.Equal(t, models.InvoiceStatusReturn, ret.Status)
	assert.True(t, refundedAt.Equal(ret.PostingDate))

	require.Len(t, ret.Items, 2)
	assert.Equal(t, "MUG", ret.Items[0].ItemCode)
	assert.True(t, dec("-2").Equal(ret.Items[0].Qty))
	assert.True(t, dec("-20").Equal(ret.Items[0].Amount))
	assert.Equal(t, "CAP", ret.Items[1].ItemCode)
	assert.True(t, ret.Items[1].Qty.IsZero())
	assert.True(t, ret.Items[1].Amount.IsZero())

	require.Len(t, ret.Taxes, 1)
	assert.Equal(t, "Refund discrepancy", ret.Taxes[0].Description)
	assert.Equal(t, "Shopify Bank - A", ret.Taxes[0].AccountHead)

	// the credit note exists, so a replay must not issue another
	again := r.PrepareSalesInvoice(ctx, order)
	assert.Equal(t, OutcomeSkipped, again.Status)
	returns, err = store.Documents.ListReturns(ctx, si.Name)
	require.NoError(t, err)
	assert.Len(t, returns, 1)
	client.AssertExpectations(t)
}

func TestRefundWithoutDateIssuesNoReturn(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusRefunded
	order.Fulfillments = nil

	client := &MockPlatformClient{}
	client.On("ListRefunds", mock.Anything, "555").Return([]clients.Refund{{ID: "r1"}}, nil)

	r := NewOrderReconciler(newSyncContext(shop, client, store))
	outcome := r.CreateDocuments(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusUnpaid, si.Status)
	returns, err := store.Documents.ListReturns(ctx, si.Name)
	require.NoError(t, err)
	assert.Empty(t, returns)
}

func TestDeferredInvoiceStaysDraft(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	shop.DeferInvoiceSubmission = true
	createTestItem(t, store, "MUG", "7", "77")

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	outcome := r.PrepareSalesInvoice(ctx, paidOrder())
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusDraft, si.DocStatus)

	so, err := store.Documents.FindSalesOrder(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	assert.True(t, so.PerBilled.IsZero(), "billing waits for submission")
}

func TestOrderWithoutCustomerUsesDefault(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.Customer = nil

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	_, _, err := r.CreateSalesOrder(ctx, order, "")
	assert.ErrorIs(t, err, ErrNoCustomer)

	shop.DefaultCustomer = "Walk-in"
	so, created, err := r.CreateSalesOrder(ctx, order, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Walk-in", so.Customer)
}

func TestCancelOrderCancelsEveryDocument(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	created := r.CreateDocuments(ctx, paidOrder())
	require.Equal(t, OutcomeSucceeded, created.Status, created.Summary())
	soName := created.Doc.DocName()
	payout := seedOrderPayout(t, store, shop, "555")

	order := paidOrder()
	order.CancelledAt = timePtr(testNow)
	order.FinancialStatus = clients.FinancialStatusVoided
	outcome := r.CancelOrder(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	reloaded, err := store.Payouts.GetByID(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, clients.FinancialStatusVoided, reloaded.Transactions[0].SourceOrderFinancialStatus)
	assert.Empty(t, reloaded.Transactions[1].SourceOrderFinancialStatus)

	so, err := store.Documents.GetSalesOrder(ctx, soName)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCancelled, so.DocStatus)
	assert.True(t, so.PerBilled.IsZero(), so.PerBilled.String())
	assert.True(t, so.PerDelivered.IsZero(), so.PerDelivered.String())

	si, err := store.Documents.GetSalesInvoice(ctx, "SI-Shopify-00001")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCancelled, si.DocStatus)
	assert.Equal(t, models.InvoiceStatusCancelled, si.Status)

	notes, err := store.Documents.ListDeliveryNotes(ctx, shop.ID, "555")
	require.NoError(t, err)
	assert.Empty(t, notes, "live notes are gone")

	again := r.CancelOrder(ctx, order)
	assert.Equal(t, OutcomeSkipped, again.Status)
}

// seedOrderPayout records a draft payout with one paid charge for an order
func seedOrderPayout(t *testing.T, store *repository.Store, shop *models.Shop, orderID string) *models.Payout {
	t.Helper()
	payout := &models.Payout{
		ShopID:          shop.ID,
		ShopifyPayoutID: "p-" + orderID,
		PayoutDate:      testNow,
		DocStatus:       models.DocStatusDraft,
		Transactions: []models.PayoutTransaction{
			{
				ShopID: shop.ID, Idx: 1, TransactionID: "t1", TransactionType: "charge",
				TotalAmount: dec("20"), NetAmount: dec("20"), SourceOrderID: orderID,
				SourceOrderFinancialStatus: clients.FinancialStatusPaid,
			},
			{ShopID: shop.ID, Idx: 2, TransactionID: "t2", TransactionType: models.TransactionTypePayout, TotalAmount: dec("-20"), NetAmount: dec("-20")},
		},
	}
	require.NoError(t, store.Payouts.Create(context.Background(), payout))
	return payout
}

func TestCancelOrderWithoutDocumentsRefreshesPayoutStatus(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	payout := seedOrderPayout(t, store, shop, "777")

	order := paidOrder()
	order.ID = "777"
	order.CancelledAt = timePtr(testNow)
	order.FinancialStatus = clients.FinancialStatusVoided
	outcome := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store)).CancelOrder(ctx, order)
	assert.Equal(t, OutcomeSkipped, outcome.Status, outcome.Summary())

	reloaded, err := store.Payouts.GetByID(ctx, payout.ID)
	require.NoError(t, err)
	assert.Equal(t, clients.FinancialStatusVoided, reloaded.Transactions[0].SourceOrderFinancialStatus)
}

func TestCancelOrderLeavesReturnsAlone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	order := paidOrder()
	order.FinancialStatus = clients.FinancialStatusRefunded
	order.Fulfillments = nil

	client := &MockPlatformClient{}
	client.On("ListRefunds", mock.Anything, "555").Return([]clients.Refund{{ID: "r1", CreatedAt: timePtr(testNow)}}, nil)

	r := NewOrderReconciler(newSyncContext(shop, client, store))
	require.Equal(t, OutcomeSucceeded, r.CreateDocuments(ctx, order).Status)

	si, err := store.Documents.FindSalesInvoice(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	returns, err := store.Documents.ListReturns(ctx, si.Name)
	require.NoError(t, err)
	require.Len(t, returns, 1)

	outcome := r.CancelOrder(ctx, order)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	ret, err := store.Documents.GetSalesInvoice(ctx, returns[0].Name)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusSubmitted, ret.DocStatus)

	original, err := store.Documents.GetSalesInvoice(ctx, si.Name)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusSubmitted, original.DocStatus, "returned invoices are not cancelled")
}

func TestUpdateOrderAmendsSalesOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	createTestItem(t, store, "MUG", "7", "77")

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	require.Equal(t, OutcomeSucceeded, r.CreateDocuments(ctx, paidOrder()).Status)

	edited := paidOrder()
	edited.LineItems[0].Quantity = 3
	outcome := r.UpdateOrder(ctx, edited)
	require.Equal(t, OutcomeSucceeded, outcome.Status, outcome.Summary())

	so, err := store.Documents.FindSalesOrder(ctx, shop.ID, "555", "")
	require.NoError(t, err)
	require.NotNil(t, so)
	assert.Equal(t, "SO-Shopify-00002", so.Name)
	assert.Equal(t, "SO-Shopify-00001", so.AmendedFrom)
	assert.True(t, dec("3").Equal(so.Items[0].Qty))

	old, err := store.Documents.GetSalesOrder(ctx, "SO-Shopify-00001")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCancelled, old.DocStatus)
}

func TestUpdateOrderWithoutSalesOrderSkips(t *testing.T) {
	store := newTestStore(t)
	shop := createTestShop(t, store)

	r := NewOrderReconciler(newSyncContext(shop, &MockPlatformClient{}, store))
	outcome := r.UpdateOrder(context.Background(), paidOrder())
	assert.Equal(t, OutcomeSkipped, outcome.Status)
	assert.Contains(t, outcome.Summary(), "no sales order to amend")
}
