package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/services"
)

// ShopLister lists the shops with payout sync turned on
type ShopLister interface {
	ListPayoutEnabled(ctx context.Context) ([]models.Shop, error)
}

// PayoutSyncer syncs the payouts of one shop
type PayoutSyncer interface {
	SyncPayouts(ctx context.Context, shopID uuid.UUID, startDate *time.Time, principal string) (*services.PayoutSyncResult, error)
}

const jobPrincipal = "payout-job"

// PayoutJob periodically syncs payouts for every enabled shop
type PayoutJob struct {
	interval time.Duration
	shops    ShopLister
	syncer   PayoutSyncer
	logger   *logrus.Entry

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPayoutJob creates a new payout job
func NewPayoutJob(interval time.Duration, shops ShopLister, syncer PayoutSyncer, logger *logrus.Logger) *PayoutJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &PayoutJob{
		interval: interval,
		shops:    shops,
		syncer:   syncer,
		logger:   logger.WithField("component", "payout_job"),
	}
}

// Start runs the job loop in the background
func (j *PayoutJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isRunning {
		return
	}
	j.isRunning = true

	ctx, j.cancel = context.WithCancel(ctx)
	j.wg.Add(1)
	go j.runLoop(ctx)

	j.logger.WithField("interval", j.interval.String()).Info("payout job started")
}

// Stop cancels the loop and waits for the current run to finish
func (j *PayoutJob) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	j.cancel()
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("payout job stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *PayoutJob) runLoop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce syncs every payout-enabled shop one after another
func (j *PayoutJob) RunOnce(ctx context.Context) {
	shops, err := j.shops.ListPayoutEnabled(ctx)
	if err != nil {
		j.logger.WithError(err).Error("failed to list payout-enabled shops")
		return
	}

	for _, shop := range shops {
		if ctx.Err() != nil {
			return
		}
		entry := j.logger.WithField("shop", shop.Name)
		result, err := j.syncer.SyncPayouts(ctx, shop.ID, nil, jobPrincipal)
		if err != nil {
			entry.WithError(err).Error("payout sync failed")
			continue
		}
		entry.WithFields(logrus.Fields{
			"created": len(result.Created),
			"skipped": result.Skipped,
			"failed":  len(result.Failed),
		}).Info("payout sync finished")
	}
}
