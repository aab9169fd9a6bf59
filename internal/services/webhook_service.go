package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/clients/shopify"
	"shopify-integration-service/internal/locks"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// Webhook topics the receiver acts on
const (
	TopicOrderCreate    = "orders/create"
	TopicOrderPaid      = "orders/paid"
	TopicOrderFulfilled = "orders/fulfilled"
	TopicOrderCancelled = "orders/cancelled"
	TopicOrderEdited    = "orders/edited"
)

// Integration log methods
const (
	MethodCreateDocuments     = "order.create_documents"
	MethodPrepareSalesInvoice = "order.prepare_sales_invoice"
	MethodPrepareDeliveryNote = "order.prepare_delivery_note"
	MethodCancelOrder         = "order.cancel"
	MethodUpdateOrder         = "order.update"
	MethodWebhook             = "webhook"
	MethodPayoutSync          = "payout.sync"
	MethodPayoutSubmit        = "payout.submit"
	MethodProductSync         = "product.sync"
)

const orderLockTTL = 5 * time.Minute

type orderStep func(*OrderReconciler, context.Context, *clients.Order) Outcome

var topicMethods = map[string]string{
	TopicOrderCreate:    MethodCreateDocuments,
	TopicOrderPaid:      MethodPrepareSalesInvoice,
	TopicOrderFulfilled: MethodPrepareDeliveryNote,
	TopicOrderCancelled: MethodCancelOrder,
	TopicOrderEdited:    MethodUpdateOrder,
}

var orderSteps = map[string]orderStep{
	MethodCreateDocuments:     (*OrderReconciler).CreateDocuments,
	MethodPrepareSalesInvoice: (*OrderReconciler).PrepareSalesInvoice,
	MethodPrepareDeliveryNote: (*OrderReconciler).PrepareDeliveryNote,
	MethodCancelOrder:         (*OrderReconciler).CancelOrder,
	MethodUpdateOrder:         (*OrderReconciler).UpdateOrder,
}

// MethodForTopic returns the log method a webhook topic dispatches to
func MethodForTopic(topic string) (string, bool) {
	method, ok := topicMethods[topic]
	return method, ok
}

// WebhookService receives platform webhooks and runs the matching order sync
// in the background
type WebhookService struct {
	store   *repository.Store
	shops   *ShopService
	clients ClientFactory
	logs    *LogService
	locker  locks.Locker
	sem     *ShopSemaphore
	logger  *logrus.Entry
	clock   func() time.Time
	wg      sync.WaitGroup
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	store *repository.Store,
	shops *ShopService,
	clientFactory ClientFactory,
	logs *LogService,
	locker locks.Locker,
	sem *ShopSemaphore,
	logger *logrus.Logger,
) *WebhookService {
	if locker == nil {
		locker = locks.NopLocker{}
	}
	if sem == nil {
		sem = NewShopSemaphore(nil)
	}
	return &WebhookService{
		store:   store,
		shops:   shops,
		clients: clientFactory,
		logs:    logs,
		locker:  locker,
		sem:     sem,
		logger:  logger.WithField("component", "webhook_service"),
	}
}

// ProcessWebhook verifies a webhook and queues its sync. It returns the queued
// log, or nil when the topic is not handled.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, headers map[string]string) (*models.IntegrationLog, error) {
	topic := headers[shopify.HeaderTopic]
	entry := s.logger.WithFields(logrus.Fields{
		"topic":  topic,
		"domain": headers[shopify.HeaderShopDomain],
	})

	shop, err := s.shops.ResolveShop(ctx, headers[shopify.HeaderShopDomain])
	if err != nil {
		entry.WithError(err).Warn("webhook for unknown shop")
		return nil, err
	}

	secret, err := s.shops.WebhookSecret(ctx, shop)
	if err != nil {
		entry.WithError(err).Warn("failed to load webhook secret")
	}
	if err := shopify.VerifyWebhook(payload, headers[shopify.HeaderHmac], secret); err != nil {
		if _, logErr := s.logs.Create(ctx, NewLogEntry{
			Shop:    shop,
			Method:  MethodWebhook,
			Status:  models.LogStatusInvalid,
			Message: fmt.Sprintf("%s: %v", topic, err),
			Request: payload,
			Headers: headers,
		}); logErr != nil {
			entry.WithError(logErr).Error("failed to record invalid webhook")
		}
		return nil, ErrInvalidSignature
	}

	method, ok := MethodForTopic(topic)
	if !ok {
		entry.Debug("ignoring unsupported topic")
		return nil, nil
	}

	log, err := s.logs.Create(ctx, NewLogEntry{
		Shop:      shop,
		Method:    method,
		Status:    models.LogStatusQueued,
		Request:   payload,
		Headers:   headers,
		Principal: headers[shopify.HeaderWebhookID],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue webhook: %w", err)
	}

	orderID, err := shopify.ExtractOrderID(payload)
	if err != nil {
		if recErr := s.logs.Record(ctx, log, Failed(err)); recErr != nil {
			entry.WithError(recErr).Error("failed to record webhook outcome")
		}
		return log, nil
	}

	s.Dispatch(shop, log, orderID)
	return log, nil
}

// Resync replays a logged order sync with the same method and log entry
func (s *WebhookService) Resync(ctx context.Context, logID uuid.UUID) (*models.IntegrationLog, error) {
	log, err := s.logs.Get(ctx, logID)
	if err != nil {
		return nil, err
	}
	if _, ok := orderSteps[log.Method]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTopic, log.Method)
	}
	if log.ShopID == nil {
		return nil, ErrShopNotFound
	}
	shop, err := s.shops.Enabled(ctx, *log.ShopID)
	if err != nil {
		return nil, err
	}

	orderID, err := shopify.ExtractOrderID(log.RequestData)
	if err != nil {
		return nil, err
	}

	if err := s.logs.Requeue(ctx, log); err != nil {
		return nil, err
	}
	s.Dispatch(shop, log, orderID)
	return log, nil
}

// Dispatch runs the sync of a queued log on its own goroutine, bounded per shop
func (s *WebhookService) Dispatch(shop *models.Shop, log *models.IntegrationLog, orderID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx := context.Background()

		release, err := s.sem.Acquire(ctx, shop.ID.String())
		if err != nil {
			if recErr := s.logs.Record(ctx, log, Failed(err)); recErr != nil {
				s.logger.WithError(recErr).Error("failed to record webhook outcome")
			}
			return
		}
		defer release()

		s.Run(ctx, shop, log, orderID)
	}()
}

// Wait blocks until every dispatched sync has finished
func (s *WebhookService) Wait() {
	s.wg.Wait()
}

// Run syncs one order for a queued log and records the outcome on it
func (s *WebhookService) Run(ctx context.Context, shop *models.Shop, log *models.IntegrationLog, orderID string) Outcome {
	entry := s.logger.WithFields(logrus.Fields{
		"shop":     shop.Name,
		"log_id":   log.ID,
		"order_id": orderID,
		"method":   log.Method,
	})

	release, err := s.locker.Obtain(ctx, locks.OrderKey(shop.Name, orderID), orderLockTTL)
	if err != nil {
		entry.WithError(err).Warn("order lock not obtained, proceeding")
	} else {
		defer func() {
			if err := release(ctx); err != nil {
				entry.WithError(err).Warn("failed to release order lock")
			}
		}()
	}

	outcome := s.syncOrder(ctx, shop, log.Method, orderID, entry)
	if err := s.logs.Record(ctx, log, outcome); err != nil {
		entry.WithError(err).Error("failed to record sync outcome")
	}
	return outcome
}

func (s *WebhookService) syncOrder(ctx context.Context, shop *models.Shop, method, orderID string, entry *logrus.Entry) Outcome {
	step, ok := orderSteps[method]
	if !ok {
		return Failed(errors.Wrap(ErrUnsupportedTopic, method))
	}

	client, err := s.clients.ForShop(ctx, shop)
	if err != nil {
		return Failed(errors.Wrap(err, "failed to build platform client"))
	}

	order, err := client.GetOrder(ctx, orderID)
	if err != nil {
		if clients.IsNotFound(err) {
			return Failed(errors.Errorf("Order '%s' not found in Shopify", orderID))
		}
		return Failed(errors.Wrap(err, "failed to fetch order"))
	}

	var outcome Outcome
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		sc := &SyncContext{Shop: shop, Client: client, Store: tx, Logger: entry, Clock: s.clock}
		outcome = step(NewOrderReconciler(sc), ctx, order)
		if outcome.Status == OutcomeFailed {
			return outcome.Err
		}
		return nil
	})
	if err != nil && outcome.Status != OutcomeFailed {
		outcome = Failed(err)
	}
	return outcome
}

// Stats returns the dispatcher's per-shop concurrency
func (s *WebhookService) Stats() map[string]interface{} {
	return s.sem.Stats()
}
