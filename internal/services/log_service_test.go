package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopify-integration-service/internal/events"
	"shopify-integration-service/internal/models"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []*events.SyncEvent
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, event *events.SyncEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() {}

func TestLogServiceRecordPublishes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shop := createTestShop(t, store)
	pub := &recordingPublisher{}
	svc := NewLogService(store.Logs, pub, quietLogger())

	log, err := svc.Create(ctx, NewLogEntry{
		Shop:    shop,
		Method:  MethodCreateDocuments,
		Status:  models.LogStatusQueued,
		Request: []byte(`{"id":555}`),
		Headers: map[string]string{"X-Shopify-Topic": "orders/create"},
	})
	require.NoError(t, err)
	require.NotNil(t, log.ShopID)
	assert.Equal(t, "demo", log.ShopName)

	so := &models.SalesOrder{Name: "SO-Shopify-00001"}
	require.NoError(t, svc.Record(ctx, log, Succeeded(so)))

	stored, err := svc.Get(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusSuccess, stored.Status)
	assert.Equal(t, "created Sales Order SO-Shopify-00001", stored.Message)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, "orders/create", stored.Headers["X-Shopify-Topic"])

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, events.SubjectOrderSynced, pub.subjects[0])
	assert.Equal(t, "Sales Order", pub.events[0].DocType)
	assert.Equal(t, "SO-Shopify-00001", pub.events[0].DocName)
	assert.Equal(t, shop.ID.String(), pub.events[0].ShopID)
	assert.Equal(t, log.ID.String(), pub.events[0].LogID)
}

func TestLogServiceRecordFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	pub := &recordingPublisher{err: errors.New("nats down")}
	svc := NewLogService(store.Logs, pub, quietLogger())

	log, err := svc.Create(ctx, NewLogEntry{Method: MethodPayoutSync, Status: models.LogStatusQueued})
	require.NoError(t, err)

	require.NoError(t, svc.Record(ctx, log, Failed(errors.New("boom"))), "publish errors are not fatal")

	stored, err := svc.Get(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusError, stored.Status)
	assert.Equal(t, "boom", stored.Message)
	assert.Contains(t, stored.Traceback, "boom")
	assert.Equal(t, []string{events.SubjectSyncFailed}, pub.subjects)

	require.NoError(t, svc.Requeue(ctx, stored))
	requeued, err := svc.Get(ctx, log.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LogStatusQueued, requeued.Status)
	assert.Empty(t, requeued.Message)
	assert.Empty(t, requeued.Traceback)
	assert.Equal(t, 1, requeued.Attempts)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, events.SubjectPayoutSynced, subjectFor(MethodPayoutSync, models.LogStatusSuccess))
	assert.Equal(t, events.SubjectOrderSynced, subjectFor(MethodCancelOrder, models.LogStatusSkipped))
	assert.Equal(t, events.SubjectSyncFailed, subjectFor(MethodPayoutSync, models.LogStatusError))
}

func TestOutcome(t *testing.T) {
	so := &models.SalesOrder{Name: "SO-Shopify-00003"}

	skipped := Skipped(so, "")
	assert.Equal(t, models.LogStatusSkipped, skipped.LogStatus())
	assert.Equal(t, "Sales Order SO-Shopify-00003 already exists", skipped.Summary())
	assert.Empty(t, skipped.Traceback())

	assert.Equal(t, "nothing to do", Skipped(nil, "nothing to do").Summary())

	failed := Failed(errors.New("no customer"))
	assert.Equal(t, models.LogStatusError, failed.LogStatus())
	assert.Equal(t, "no customer", failed.Summary())
	assert.Contains(t, failed.Traceback(), "TestOutcome")
}
