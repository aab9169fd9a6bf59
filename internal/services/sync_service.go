package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// ProductSyncResult summarizes one product import
type ProductSyncResult struct {
	Imported int      `json:"imported"`
	Failed   []string `json:"failed,omitempty"`
}

// SyncService runs the shop-level synchronizations triggered by an operator or
// the scheduler: product import, payout sync and payout submission
type SyncService struct {
	store   *repository.Store
	shops   *ShopService
	clients ClientFactory
	logs    *LogService
	logger  *logrus.Entry
	clock   func() time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(
	store *repository.Store,
	shops *ShopService,
	clientFactory ClientFactory,
	logs *LogService,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		store:   store,
		shops:   shops,
		clients: clientFactory,
		logs:    logs,
		logger:  logger.WithField("component", "sync_service"),
	}
}

func (s *SyncService) syncContext(ctx context.Context, shop *models.Shop) (*SyncContext, error) {
	client, err := s.clients.ForShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	return &SyncContext{
		Shop:   shop,
		Client: client,
		Store:  s.store,
		Logger: s.logger.WithField("shop", shop.Name),
		Clock:  s.clock,
	}, nil
}

// record writes a finished log entry for a synchronous run
func (s *SyncService) record(ctx context.Context, shop *models.Shop, method, principal string, outcome Outcome) {
	log, err := s.logs.Create(ctx, NewLogEntry{
		Shop:      shop,
		Method:    method,
		Status:    models.LogStatusQueued,
		Principal: principal,
	})
	if err == nil {
		err = s.logs.Record(ctx, log, outcome)
	}
	if err != nil {
		s.logger.WithError(err).WithField("method", method).Error("failed to write integration log")
	}
}

// SyncProducts imports every active product of a shop as items. Each product
// is imported in its own transaction.
func (s *SyncService) SyncProducts(ctx context.Context, shopID uuid.UUID, principal string) (*ProductSyncResult, error) {
	shop, err := s.shops.Enabled(ctx, shopID)
	if err != nil {
		return nil, err
	}
	sc, err := s.syncContext(ctx, shop)
	if err != nil {
		return nil, err
	}

	products, err := sc.Client.ListProducts(ctx, &clients.ListOptions{Status: "active"})
	if err != nil {
		err = errors.Wrap(err, "failed to list products")
		s.record(ctx, shop, MethodProductSync, principal, Failed(err))
		return nil, err
	}

	result := &ProductSyncResult{}
	for i := range products {
		product := &products[i]
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			return NewItemResolver(sc.WithStore(tx)).MakeItem(ctx, product)
		})
		if err != nil {
			sc.logger().WithError(err).WithField("product_id", product.ID).Error("failed to import product")
			result.Failed = append(result.Failed, product.ID)
			continue
		}
		result.Imported++
	}

	outcome := Outcome{Status: OutcomeSucceeded, Message: fmt.Sprintf("imported %d products", result.Imported)}
	if len(result.Failed) > 0 {
		outcome = Failed(errors.Errorf("failed to import products: %s", strings.Join(result.Failed, ", ")))
	}
	s.record(ctx, shop, MethodProductSync, principal, outcome)
	return result, nil
}

// SyncPayouts records the payouts of a shop issued since startDate, or since
// the shop's watermark when startDate is nil
func (s *SyncService) SyncPayouts(ctx context.Context, shopID uuid.UUID, startDate *time.Time, principal string) (*PayoutSyncResult, error) {
	shop, err := s.shops.Enabled(ctx, shopID)
	if err != nil {
		return nil, err
	}
	sc, err := s.syncContext(ctx, shop)
	if err != nil {
		return nil, err
	}

	result, err := NewPayoutReconciler(sc).Sync(ctx, startDate)
	var outcome Outcome
	switch {
	case err != nil:
		outcome = Failed(err)
	case len(result.Failed) > 0:
		outcome = Failed(errors.Errorf("failed to sync payouts: %s", strings.Join(result.Failed, ", ")))
	default:
		outcome = Outcome{
			Status:  OutcomeSucceeded,
			Message: fmt.Sprintf("created %d payouts, skipped %d", len(result.Created), result.Skipped),
		}
	}
	s.record(ctx, shop, MethodPayoutSync, principal, outcome)
	return result, err
}

// SubmitPayout settles a draft payout in one transaction
func (s *SyncService) SubmitPayout(ctx context.Context, payoutID uuid.UUID, principal string) (*models.Payout, error) {
	payout, err := s.store.Payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	shop, err := s.shops.Enabled(ctx, payout.ShopID)
	if err != nil {
		return nil, err
	}
	sc, err := s.syncContext(ctx, shop)
	if err != nil {
		return nil, err
	}

	var submitted *models.Payout
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		submitted, err = NewPayoutReconciler(sc.WithStore(tx)).Submit(ctx, payoutID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPayoutSubmitted) {
			s.record(ctx, shop, MethodPayoutSubmit, principal, Failed(err))
		}
		return nil, err
	}

	s.record(ctx, shop, MethodPayoutSubmit, principal, Succeeded(submitted))
	return submitted, nil
}

// GetPayout retrieves a payout with its transactions
func (s *SyncService) GetPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return s.store.Payouts.GetByID(ctx, id)
}

// ListPayouts retrieves payouts, newest first
func (s *SyncService) ListPayouts(ctx context.Context, opts repository.PayoutListOptions) ([]models.Payout, int64, error) {
	return s.store.Payouts.List(ctx, opts)
}
