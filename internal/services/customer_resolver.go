package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
)

// CustomerResolver maps platform customers to ERP customers, creating the
// customer with its addresses and contact on first sight
type CustomerResolver struct {
	sc *SyncContext
}

// NewCustomerResolver creates a customer resolver for one sync
func NewCustomerResolver(sc *SyncContext) *CustomerResolver {
	return &CustomerResolver{sc: sc}
}

// ResolveOrCreate returns the ERP customer name for a platform customer. A nil
// customer resolves to the shop's default customer.
func (r *CustomerResolver) ResolveOrCreate(ctx context.Context, customer *clients.Customer) (string, error) {
	if customer == nil || customer.ID == "" {
		if r.sc.Shop.DefaultCustomer == "" {
			return "", ErrNoCustomer
		}
		return r.sc.Shop.DefaultCustomer, nil
	}

	existing, err := r.sc.Store.Customers.FindByShopifyID(ctx, customer.ID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Name, nil
	}

	return r.create(ctx, customer)
}

// DisplayName is "first last", else the email, else the id
func DisplayName(customer *clients.Customer) string {
	if customer.FirstName != "" {
		return strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	}
	if customer.Email != "" {
		return customer.Email
	}
	return customer.ID
}

func (r *CustomerResolver) create(ctx context.Context, customer *clients.Customer) (string, error) {
	repo := r.sc.Store.Customers

	record := &models.Customer{
		Name:              customer.ID,
		CustomerName:      DisplayName(customer),
		ShopifyCustomerID: customer.ID,
		CustomerGroup:     r.sc.Shop.CustomerGroup,
		CustomerType:      models.CustomerTypeIndividual,
		TaxExempt:         customer.TaxExempt,
		Email:             customer.Email,
	}
	if err := repo.Create(ctx, record); err != nil {
		return "", errors.Wrapf(err, "failed to create customer %s", customer.ID)
	}

	addresses := customer.Addresses
	if len(addresses) == 0 && customer.DefaultAddress != nil {
		addresses = []clients.Address{*customer.DefaultAddress}
	}
	for idx, addr := range addresses {
		if err := r.createAddress(ctx, record, customer, addr, idx); err != nil {
			return "", err
		}
	}

	phone := customer.Phone
	if phone == "" && customer.DefaultAddress != nil {
		phone = customer.DefaultAddress.Phone
	}
	contact := &models.Contact{
		Customer:     record.Name,
		FirstName:    customer.FirstName,
		LastName:     customer.LastName,
		Email:        customer.Email,
		Phone:        phone,
		Status:       models.ContactStatusPassive,
		Unsubscribed: !customer.AcceptsMarketing,
	}
	if err := repo.CreateContact(ctx, contact); err != nil {
		return "", errors.Wrapf(err, "failed to create contact for customer %s", customer.ID)
	}

	r.sc.logger().WithField("customer", record.Name).Debug("created customer")
	return record.Name, nil
}

func (r *CustomerResolver) createAddress(ctx context.Context, record *models.Customer, customer *clients.Customer, addr clients.Address, idx int) error {
	repo := r.sc.Store.Customers

	title, err := r.addressTitle(ctx, record.CustomerName, idx)
	if err != nil {
		return err
	}
	name, err := r.addressName(ctx, title)
	if err != nil {
		return err
	}

	line1 := addr.Address1
	if line1 == "" {
		line1 = "Address 1"
	}
	city := addr.City
	if city == "" {
		city = "City"
	}

	address := &models.Address{
		Name:             name,
		Title:            title,
		Customer:         record.Name,
		ShopifyAddressID: addr.ID,
		AddressType:      models.AddressTypeBilling,
		AddressLine1:     line1,
		AddressLine2:     addr.Address2,
		City:             city,
		State:            addr.Province,
		Pincode:          addr.Zip,
		Country:          addr.Country,
		Phone:            addr.Phone,
		Email:            customer.Email,
	}
	if err := repo.CreateAddress(ctx, address); err != nil {
		return errors.Wrapf(err, "failed to create address for customer %s", record.Name)
	}
	return nil
}

// addressTitle is the customer name, or "<name>-<index>" when the customer
// name's billing address is already taken
func (r *CustomerResolver) addressTitle(ctx context.Context, customerName string, idx int) (string, error) {
	base := strings.TrimSpace(customerName)
	taken, err := r.sc.Store.Customers.AddressExists(ctx, fmt.Sprintf("%s-%s", base, models.AddressTypeBilling))
	if err != nil {
		return "", err
	}
	if taken {
		return fmt.Sprintf("%s-%d", base, idx), nil
	}
	return base, nil
}

// addressName is "<title>-Billing", numbered further when still taken
func (r *CustomerResolver) addressName(ctx context.Context, title string) (string, error) {
	name := fmt.Sprintf("%s-%s", strings.TrimSpace(title), models.AddressTypeBilling)
	candidate := name
	for n := 1; ; n++ {
		taken, err := r.sc.Store.Customers.AddressExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", name, n)
	}
}
