package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PlatformClient defines the reads the connector issues against a commerce platform
type PlatformClient interface {
	// Orders
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context, opts *ListOptions) ([]Order, error)
	ListRefunds(ctx context.Context, orderID string) ([]Refund, error)

	// Products
	GetProduct(ctx context.Context, productID string) (*Product, error)
	ListProducts(ctx context.Context, opts *ListOptions) ([]Product, error)
	GetVariant(ctx context.Context, variantID string) (*Variant, error)

	// Payments
	GetPayout(ctx context.Context, payoutID string) (*Payout, error)
	ListPayouts(ctx context.Context, opts *ListOptions) ([]Payout, error)
	ListPayoutTransactions(ctx context.Context, payoutID string) ([]Transaction, error)
}

// ListOptions contains common pagination options. A positive Limit returns a
// single page of that size; otherwise every page is drained.
type ListOptions struct {
	Limit   int
	Status  string
	Title   string
	IDs     []string
	Fields  []string
	DateMin time.Time
}

// APIError is returned for any non-2xx platform response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Shopify API error (status %d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a platform 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
