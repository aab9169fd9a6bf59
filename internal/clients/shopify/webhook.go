package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"shopify-integration-service/internal/clients"
)

// Webhook request headers
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderHmac       = "X-Shopify-Hmac-Sha256"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

var (
	ErrMissingSecret    = errors.New("no webhook secret configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Sign computes the base64 HMAC-SHA256 Shopify sends with each webhook
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook verifies a Shopify webhook signature
func VerifyWebhook(payload []byte, signature string, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if signature == "" {
		return ErrInvalidSignature
	}

	if !hmac.Equal([]byte(signature), []byte(Sign(payload, secret))) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseOrder decodes an order webhook body
func ParseOrder(payload []byte) (*clients.Order, error) {
	var o shopifyOrder
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("failed to parse order payload: %w", err)
	}
	if o.ID == "" {
		return nil, errors.New("order payload has no id")
	}

	order := convertShopifyOrder(o)
	return &order, nil
}

// ExtractOrderID returns the order id of a stored payload. orders/edited bodies
// carry it under order_edit.order_id.
func ExtractOrderID(payload []byte) (string, error) {
	var body struct {
		ID        objectID `json:"id"`
		OrderEdit *struct {
			OrderID objectID `json:"order_id"`
		} `json:"order_edit"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", fmt.Errorf("failed to parse payload: %w", err)
	}
	if body.OrderEdit != nil && body.OrderEdit.OrderID != "" {
		return body.OrderEdit.OrderID.String(), nil
	}
	if body.ID == "" {
		return "", errors.New("payload has no order id")
	}
	return body.ID.String(), nil
}
