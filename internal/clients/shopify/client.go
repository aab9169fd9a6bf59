package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopify-integration-service/internal/clients"

	"golang.org/x/time/rate"
)

const (
	// DefaultAPIVersion is the Admin API version used when a shop does not pin one
	DefaultAPIVersion = "2024-01"

	defaultRateLimit = 2
	maxPageSize      = 250
)

// Config holds the settings for one shop's Admin API client
type Config struct {
	ShopURL     string
	AccessToken string
	APIVersion  string
	RateLimit   float64 // requests per second
	Burst       int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Retry       *clients.RetryConfig
}

// Client implements clients.PlatformClient against the Shopify Admin REST API
type Client struct {
	httpClient  *http.Client
	storeURL    string
	accessToken string
	apiVersion  string
	rateLimiter *rate.Limiter
	retrier     *clients.Retrier
}

var _ clients.PlatformClient = (*Client)(nil)

// NewClient creates a new Shopify Admin API client
func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:  httpClient,
		storeURL:    normalizeShopURL(cfg.ShopURL),
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		retrier:     clients.NewRetrier(cfg.Retry),
	}
}

// normalizeShopURL accepts "store.myshopify.com" or a full URL
func normalizeShopURL(shopURL string) string {
	shopURL = strings.TrimRight(strings.TrimSpace(shopURL), "/")
	if !strings.Contains(shopURL, "://") {
		shopURL = "https://" + shopURL
	}
	return shopURL
}

// GetOrder fetches one order by id
func (c *Client) GetOrder(ctx context.Context, orderID string) (*clients.Order, error) {
	var resp struct {
		Order shopifyOrder `json:"order"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/orders/%s.json", orderID), nil, &resp); err != nil {
		return nil, err
	}

	order := convertShopifyOrder(resp.Order)
	return &order, nil
}

// ListOrders lists orders in any status
func (c *Client) ListOrders(ctx context.Context, opts *clients.ListOptions) ([]clients.Order, error) {
	params := url.Values{}
	params.Set("status", "any")
	applyListOptions(params, opts)

	raw, err := listAll[shopifyOrder](ctx, c, "/orders.json", "orders", params, pageLimit(opts))
	if err != nil {
		return nil, err
	}

	orders := make([]clients.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, convertShopifyOrder(o))
	}
	return orders, nil
}

// ListRefunds lists the refunds issued against an order
func (c *Client) ListRefunds(ctx context.Context, orderID string) ([]clients.Refund, error) {
	var resp struct {
		Refunds []shopifyRefund `json:"refunds"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/orders/%s/refunds.json", orderID), nil, &resp); err != nil {
		return nil, err
	}

	refunds := make([]clients.Refund, 0, len(resp.Refunds))
	for _, r := range resp.Refunds {
		refunds = append(refunds, convertShopifyRefund(r))
	}
	return refunds, nil
}

// GetProduct fetches a single product
func (c *Client) GetProduct(ctx context.Context, productID string) (*clients.Product, error) {
	var resp struct {
		Product shopifyProduct `json:"product"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%s.json", productID), nil, &resp); err != nil {
		return nil, err
	}

	product := convertShopifyProduct(resp.Product)
	return &product, nil
}

// ListProducts fetches products, optionally filtered by status or exact title
func (c *Client) ListProducts(ctx context.Context, opts *clients.ListOptions) ([]clients.Product, error) {
	params := url.Values{}
	applyListOptions(params, opts)

	raw, err := listAll[shopifyProduct](ctx, c, "/products.json", "products", params, pageLimit(opts))
	if err != nil {
		return nil, err
	}

	products := make([]clients.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, convertShopifyProduct(p))
	}
	return products, nil
}

// GetVariant fetches a single variant
func (c *Client) GetVariant(ctx context.Context, variantID string) (*clients.Variant, error) {
	var resp struct {
		Variant shopifyVariant `json:"variant"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/variants/%s.json", variantID), nil, &resp); err != nil {
		return nil, err
	}

	variant := convertShopifyVariant(resp.Variant)
	return &variant, nil
}

// GetPayout fetches a Shopify Payments payout
func (c *Client) GetPayout(ctx context.Context, payoutID string) (*clients.Payout, error) {
	var resp struct {
		Payout shopifyPayout `json:"payout"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/shopify_payments/payouts/%s.json", payoutID), nil, &resp); err != nil {
		return nil, err
	}

	payout, err := convertShopifyPayout(resp.Payout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payout %s: %w", payoutID, err)
	}
	return &payout, nil
}

// ListPayouts lists payouts, from DateMin when set
func (c *Client) ListPayouts(ctx context.Context, opts *clients.ListOptions) ([]clients.Payout, error) {
	params := url.Values{}
	applyListOptions(params, opts)

	raw, err := listAll[shopifyPayout](ctx, c, "/shopify_payments/payouts.json", "payouts", params, pageLimit(opts))
	if err != nil {
		return nil, err
	}

	payouts := make([]clients.Payout, 0, len(raw))
	for _, p := range raw {
		payout, err := convertShopifyPayout(p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payout %s: %w", p.ID, err)
		}
		payouts = append(payouts, payout)
	}
	return payouts, nil
}

// ListPayoutTransactions lists every balance transaction of a payout
func (c *Client) ListPayoutTransactions(ctx context.Context, payoutID string) ([]clients.Transaction, error) {
	params := url.Values{}
	params.Set("payout_id", payoutID)

	raw, err := listAll[shopifyTransaction](ctx, c, "/shopify_payments/balance/transactions.json", "transactions", params, 0)
	if err != nil {
		return nil, err
	}

	transactions := make([]clients.Transaction, 0, len(raw))
	for _, t := range raw {
		transactions = append(transactions, convertShopifyTransaction(t))
	}
	return transactions, nil
}

func applyListOptions(params url.Values, opts *clients.ListOptions) {
	if opts == nil {
		return
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Title != "" {
		params.Set("title", opts.Title)
	}
	if len(opts.IDs) > 0 {
		params.Set("ids", strings.Join(opts.IDs, ","))
	}
	if len(opts.Fields) > 0 {
		params.Set("fields", strings.Join(opts.Fields, ","))
	}
	if !opts.DateMin.IsZero() {
		params.Set("date_min", opts.DateMin.Format(payoutDateLayout))
	}
}

func pageLimit(opts *clients.ListOptions) int {
	if opts == nil {
		return 0
	}
	return opts.Limit
}

// listAll follows Link header cursors until the last page. With limit > 0 only
// the first page of that size is returned.
func listAll[T any](ctx context.Context, c *Client, path, key string, params url.Values, limit int) ([]T, error) {
	var all []T

	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	} else {
		params.Set("limit", strconv.Itoa(maxPageSize))
	}

	for {
		body, headers, err := c.doRequestWithHeaders(ctx, http.MethodGet, path, params)
		if err != nil {
			return nil, err
		}

		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		var page []T
		if raw, ok := envelope[key]; ok {
			if err := json.Unmarshal(raw, &page); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", key, err)
			}
		}
		all = append(all, page...)

		if limit > 0 {
			return all, nil
		}

		cursor, hasNext := parseShopifyPagination(headers.Get("Link"))
		if !hasNext || cursor == "" {
			return all, nil
		}

		// Shopify rejects filters alongside page_info; only limit and fields carry over
		next := url.Values{}
		next.Set("limit", params.Get("limit"))
		next.Set("page_info", cursor)
		if fields := params.Get("fields"); fields != "" {
			next.Set("fields", fields)
		}
		params = next
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	body, _, err := c.doRequestWithHeaders(ctx, http.MethodGet, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// doRequestWithHeaders performs an authenticated, rate limited and retried request
func (c *Client) doRequestWithHeaders(ctx context.Context, method, path string, params url.Values) ([]byte, http.Header, error) {
	fullURL := fmt.Sprintf("%s/admin/api/%s%s", c.storeURL, c.apiVersion, path)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	resp, result := c.retrier.DoHTTP(ctx, func(ctx context.Context) (*http.Response, error) {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	})
	if resp == nil {
		if result.LastError != nil {
			return nil, nil, fmt.Errorf("shopify request %s failed after %d attempts: %w", path, result.Attempts, result.LastError)
		}
		return nil, nil, fmt.Errorf("shopify request %s failed", path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, nil, &clients.APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, resp.Header, nil
}

func parseShopifyPagination(linkHeader string) (string, bool) {
	// Format: <url>; rel="previous", <url>; rel="next"
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		urlPart := strings.TrimSpace(strings.Split(part, ";")[0])
		urlPart = strings.Trim(urlPart, "<>")
		if parsedURL, err := url.Parse(urlPart); err == nil {
			return parsedURL.Query().Get("page_info"), true
		}
	}
	return "", false
}
