package models

// NamingSeries is the counter behind a document name prefix such as SO-Shopify-
type NamingSeries struct {
	Prefix       string `gorm:"type:varchar(100);primaryKey" json:"prefix"`
	CurrentValue int64  `gorm:"not null;default:0" json:"currentValue"`
}

// TableName specifies the table name for NamingSeries
func (NamingSeries) TableName() string {
	return "naming_series"
}

// AllModels lists every table owned by the service, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Shop{},
		&IntegrationLog{},
		&NamingSeries{},
		&Account{},
		&Item{},
		&ItemVariantAttribute{},
		&ItemAttribute{},
		&ItemAttributeValue{},
		&ItemPrice{},
		&ItemGroup{},
		&Supplier{},
		&SupplierGroup{},
		&ItemAlias{},
		&Customer{},
		&Address{},
		&Contact{},
		&SalesOrder{},
		&SalesOrderItem{},
		&TaxCharge{},
		&SalesInvoice{},
		&SalesInvoiceItem{},
		&DeliveryNote{},
		&DeliveryNoteItem{},
		&Payout{},
		&PayoutTransaction{},
		&JournalEntry{},
		&JournalEntryAccount{},
	}
}
