package shopify

import (
	"time"

	"shopify-integration-service/internal/clients"
)

const payoutDateLayout = "2006-01-02"

func convertShopifyOrder(o shopifyOrder) clients.Order {
	order := clients.Order{
		ID:                    o.ID.String(),
		OrderNumber:           o.OrderNumber.String(),
		Name:                  o.Name,
		Email:                 o.Email,
		Currency:              o.Currency,
		FinancialStatus:       o.FinancialStatus,
		FulfillmentStatus:     o.FulfillmentStatus,
		TaxesIncluded:         o.TaxesIncluded,
		TotalPrice:            o.TotalPrice.value,
		TotalTax:              o.TotalTax.value,
		CurrentTotalTax:       o.CurrentTotalTax.ptr(),
		CurrentTotalDiscounts: o.CurrentTotalDiscounts.ptr(),
		Customer:              convertShopifyCustomer(o.Customer),
		LineItems:             convertShopifyLineItems(o.LineItems),
		CreatedAt:             o.CreatedAt,
		CancelledAt:           o.CancelledAt,
		CancelReason:          o.CancelReason,
	}

	for _, sl := range o.ShippingLines {
		order.ShippingLines = append(order.ShippingLines, clients.ShippingLine{
			Title: sl.Title,
			Price: sl.Price.value,
		})
	}
	for _, tl := range o.TaxLines {
		order.TaxLines = append(order.TaxLines, clients.TaxLine{
			Title: tl.Title,
			Rate:  tl.Rate.ptr(),
			Price: tl.Price.value,
		})
	}
	for _, f := range o.Fulfillments {
		order.Fulfillments = append(order.Fulfillments, clients.Fulfillment{
			ID:        f.ID.String(),
			OrderID:   f.OrderID.String(),
			Status:    f.Status,
			CreatedAt: f.CreatedAt,
			LineItems: convertShopifyLineItems(f.LineItems),
		})
	}

	return order
}

func convertShopifyLineItems(items []shopifyLineItem) []clients.LineItem {
	if len(items) == 0 {
		return nil
	}
	result := make([]clients.LineItem, 0, len(items))
	for _, li := range items {
		result = append(result, convertShopifyLineItem(li))
	}
	return result
}

func convertShopifyLineItem(li shopifyLineItem) clients.LineItem {
	return clients.LineItem{
		ID:                  li.ID.String(),
		ProductID:           li.ProductID.String(),
		VariantID:           li.VariantID.String(),
		SKU:                 li.SKU,
		Title:               li.Title,
		VariantTitle:        li.VariantTitle,
		Quantity:            li.Quantity,
		FulfillableQuantity: li.FulfillableQuantity,
		Price:               li.Price.value,
		TotalDiscount:       li.TotalDiscount.value,
	}
}

func convertShopifyRefund(r shopifyRefund) clients.Refund {
	refund := clients.Refund{
		ID:          r.ID.String(),
		OrderID:     r.OrderID.String(),
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
		ProcessedAt: r.ProcessedAt,
	}
	for _, rli := range r.RefundLineItems {
		refund.RefundLineItems = append(refund.RefundLineItems, clients.RefundLineItem{
			ID:         rli.ID.String(),
			LineItemID: rli.LineItemID.String(),
			Quantity:   rli.Quantity,
			LineItem:   convertShopifyLineItem(rli.LineItem),
		})
	}
	for _, adj := range r.OrderAdjustments {
		refund.OrderAdjustments = append(refund.OrderAdjustments, clients.OrderAdjustment{
			ID:        adj.ID.String(),
			Kind:      adj.Kind,
			Reason:    adj.Reason,
			Amount:    adj.Amount.value,
			TaxAmount: adj.TaxAmount.value,
		})
	}
	return refund
}

func convertShopifyCustomer(c *shopifyCustomer) *clients.Customer {
	if c == nil {
		return nil
	}
	customer := &clients.Customer{
		ID:               c.ID.String(),
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
		TaxExempt:        c.TaxExempt,
		DefaultAddress:   convertShopifyAddress(c.DefaultAddress),
	}
	for i := range c.Addresses {
		customer.Addresses = append(customer.Addresses, *convertShopifyAddress(&c.Addresses[i]))
	}
	return customer
}

func convertShopifyAddress(addr *shopifyAddress) *clients.Address {
	if addr == nil {
		return nil
	}
	return &clients.Address{
		ID:           addr.ID.String(),
		FirstName:    addr.FirstName,
		LastName:     addr.LastName,
		Company:      addr.Company,
		Address1:     addr.Address1,
		Address2:     addr.Address2,
		City:         addr.City,
		Province:     addr.Province,
		ProvinceCode: addr.ProvinceCode,
		Country:      addr.Country,
		CountryCode:  addr.CountryCode,
		Zip:          addr.Zip,
		Phone:        addr.Phone,
		Default:      addr.Default,
	}
}

func convertShopifyProduct(p shopifyProduct) clients.Product {
	product := clients.Product{
		ID:          p.ID.String(),
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Status:      p.Status,
	}
	for _, o := range p.Options {
		product.Options = append(product.Options, clients.Option{
			ID:       o.ID.String(),
			Name:     o.Name,
			Position: o.Position,
			Values:   o.Values,
		})
	}
	for _, v := range p.Variants {
		product.Variants = append(product.Variants, convertShopifyVariant(v))
	}
	for _, img := range p.Images {
		image := clients.Image{ID: img.ID.String(), Src: img.Src}
		for _, id := range img.VariantIDs {
			image.VariantIDs = append(image.VariantIDs, id.String())
		}
		product.Images = append(product.Images, image)
	}
	return product
}

func convertShopifyVariant(v shopifyVariant) clients.Variant {
	return clients.Variant{
		ID:         v.ID.String(),
		ProductID:  v.ProductID.String(),
		Title:      v.Title,
		SKU:        v.SKU,
		Price:      v.Price.value,
		Weight:     v.Weight.value,
		WeightUnit: v.WeightUnit,
		Option1:    deref(v.Option1),
		Option2:    deref(v.Option2),
		Option3:    deref(v.Option3),
	}
}

func convertShopifyPayout(p shopifyPayout) (clients.Payout, error) {
	payout := clients.Payout{
		ID:       p.ID.String(),
		Status:   p.Status,
		Currency: p.Currency,
		Amount:   p.Amount.value,
		Summary: clients.PayoutSummary{
			AdjustmentsFeeAmount:      p.Summary.AdjustmentsFeeAmount.value,
			AdjustmentsGrossAmount:    p.Summary.AdjustmentsGrossAmount.value,
			ChargesFeeAmount:          p.Summary.ChargesFeeAmount.value,
			ChargesGrossAmount:        p.Summary.ChargesGrossAmount.value,
			RefundsFeeAmount:          p.Summary.RefundsFeeAmount.value,
			RefundsGrossAmount:        p.Summary.RefundsGrossAmount.value,
			ReservedFundsFeeAmount:    p.Summary.ReservedFundsFeeAmount.value,
			ReservedFundsGrossAmount:  p.Summary.ReservedFundsGrossAmount.value,
			RetriedPayoutsFeeAmount:   p.Summary.RetriedPayoutsFeeAmount.value,
			RetriedPayoutsGrossAmount: p.Summary.RetriedPayoutsGrossAmount.value,
		},
	}
	if p.Date != "" {
		date, err := time.Parse(payoutDateLayout, p.Date)
		if err != nil {
			return payout, err
		}
		payout.Date = date
	}
	return payout, nil
}

func convertShopifyTransaction(t shopifyTransaction) clients.Transaction {
	return clients.Transaction{
		ID:                       t.ID.String(),
		Type:                     t.Type,
		PayoutID:                 t.PayoutID.String(),
		Currency:                 t.Currency,
		Amount:                   t.Amount.value,
		Fee:                      t.Fee.value,
		Net:                      t.Net.value,
		SourceID:                 t.SourceID.String(),
		SourceType:               t.SourceType,
		SourceOrderID:            t.SourceOrderID.String(),
		SourceOrderTransactionID: t.SourceOrderTransactionID.String(),
		ProcessedAt:              t.ProcessedAt,
		Test:                     t.Test,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
