package services

import (
	"errors"

	"shopify-integration-service/internal/clients/shopify"
	"shopify-integration-service/internal/erp"
)

var (
	ErrShopNotFound           = errors.New("shop not found")
	ErrShopDisabled           = errors.New("shop is disabled")
	ErrInvalidSignature       = shopify.ErrInvalidSignature
	ErrAccountNotConfigured   = erp.ErrAccountNotConfigured
	ErrUnsupportedTopic       = errors.New("unsupported webhook topic")
	ErrNoCustomer             = errors.New("order has no customer and the shop has no default customer")
	ErrNoCredentials          = errors.New("shop has no credentials configured")
	ErrPayoutSubmitted        = errors.New("payout is already submitted")
	ErrInvalidShop            = errors.New("invalid shop configuration")
	ErrUnbalancedJournalEntry = errors.New("journal entry does not balance")
)
