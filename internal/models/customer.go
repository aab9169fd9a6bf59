package models

// Customer defaults
const (
	CustomerTypeIndividual = "Individual"
	AddressTypeBilling     = "Billing"
	ContactStatusPassive   = "Passive"
)

// Customer is the ERP customer master, keyed by Shopify customer id
type Customer struct {
	Model
	Name              string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	CustomerName      string `gorm:"type:varchar(255)" json:"customerName"`
	ShopifyCustomerID string `gorm:"type:varchar(64);index" json:"shopifyCustomerId,omitempty"`
	CustomerGroup     string `gorm:"type:varchar(255)" json:"customerGroup"`
	CustomerType      string `gorm:"type:varchar(50)" json:"customerType"`
	TaxExempt         bool   `json:"taxExempt"`
	Email             string `gorm:"type:varchar(255)" json:"email,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// Address is a customer billing address
type Address struct {
	Model
	Name             string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Title            string `gorm:"type:varchar(255)" json:"title"`
	Customer         string `gorm:"type:varchar(255);index" json:"customer"`
	ShopifyAddressID string `gorm:"type:varchar(64)" json:"shopifyAddressId,omitempty"`
	AddressType      string `gorm:"type:varchar(50)" json:"addressType"`
	AddressLine1     string `gorm:"type:varchar(255)" json:"addressLine1"`
	AddressLine2     string `gorm:"type:varchar(255)" json:"addressLine2,omitempty"`
	City             string `gorm:"type:varchar(255)" json:"city"`
	State            string `gorm:"type:varchar(255)" json:"state,omitempty"`
	Pincode          string `gorm:"type:varchar(50)" json:"pincode,omitempty"`
	Country          string `gorm:"type:varchar(100)" json:"country,omitempty"`
	Phone            string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Email            string `gorm:"type:varchar(255)" json:"email,omitempty"`
}

// TableName specifies the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// Contact is the person record linked to a customer
type Contact struct {
	Model
	Customer     string `gorm:"type:varchar(255);index" json:"customer"`
	FirstName    string `gorm:"type:varchar(255)" json:"firstName,omitempty"`
	LastName     string `gorm:"type:varchar(255)" json:"lastName,omitempty"`
	Email        string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Status       string `gorm:"type:varchar(50)" json:"status"`
	Unsubscribed bool   `json:"unsubscribed"`
}

// TableName specifies the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}
