package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"shopify-integration-service/internal/events"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// LogService writes integration logs and announces their outcome. Logs are
// written outside any sync transaction so a rollback never loses them.
type LogService struct {
	logs      *repository.IntegrationLogRepository
	publisher events.Publisher
	logger    *logrus.Entry
}

// NewLogService creates a new integration log service
func NewLogService(logs *repository.IntegrationLogRepository, publisher events.Publisher, logger *logrus.Logger) *LogService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LogService{
		logs:      logs,
		publisher: publisher,
		logger:    logger.WithField("component", "integration_log"),
	}
}

// NewLogEntry describes a log entry about to be written
type NewLogEntry struct {
	Shop      *models.Shop
	Method    string
	Status    models.LogStatus
	Message   string
	Request   []byte
	Headers   map[string]string
	Principal string
}

// Create writes a new log entry
func (s *LogService) Create(ctx context.Context, entry NewLogEntry) (*models.IntegrationLog, error) {
	log := &models.IntegrationLog{
		Method:    entry.Method,
		Status:    entry.Status,
		Message:   entry.Message,
		Principal: entry.Principal,
	}
	if entry.Shop != nil {
		shopID := entry.Shop.ID
		log.ShopID = &shopID
		log.ShopName = entry.Shop.Name
	}
	if len(entry.Request) > 0 {
		log.RequestData = datatypes.JSON(entry.Request)
	}
	if len(entry.Headers) > 0 {
		log.Headers = models.JSONB{}
		for k, v := range entry.Headers {
			log.Headers[k] = v
		}
	}

	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// Record stores the outcome of one attempt on a log entry, then publishes the
// matching event. It is called exactly once per attempt.
func (s *LogService) Record(ctx context.Context, log *models.IntegrationLog, outcome Outcome) error {
	status := outcome.LogStatus()
	message := outcome.Summary()

	if err := s.logs.RecordAttempt(ctx, log.ID, status, message, outcome.Traceback()); err != nil {
		return err
	}
	log.Status = status
	log.Message = message

	entry := s.logger.WithFields(logrus.Fields{
		"log_id": log.ID,
		"shop":   log.ShopName,
		"method": log.Method,
		"status": status,
	})
	if outcome.Err != nil {
		entry.WithError(outcome.Err).Error("sync failed")
	} else {
		entry.Info(message)
	}

	event := &events.SyncEvent{
		LogID:    log.ID.String(),
		ShopName: log.ShopName,
		Method:   log.Method,
		Status:   string(status),
		Message:  message,
	}
	if log.ShopID != nil {
		event.ShopID = log.ShopID.String()
	}
	if outcome.Doc != nil {
		event.DocType = outcome.Doc.DocType()
		event.DocName = outcome.Doc.DocName()
	}
	if err := s.publisher.Publish(ctx, subjectFor(log.Method, status), event); err != nil {
		entry.WithError(err).Warn("failed to publish sync event")
	}
	return nil
}

func subjectFor(method string, status models.LogStatus) string {
	if status == models.LogStatusError {
		return events.SubjectSyncFailed
	}
	if strings.Contains(method, "payout") {
		return events.SubjectPayoutSynced
	}
	return events.SubjectOrderSynced
}

// Requeue resets a log entry to Queued before it is replayed
func (s *LogService) Requeue(ctx context.Context, log *models.IntegrationLog) error {
	if err := s.logs.Update(ctx, log.ID, map[string]interface{}{
		"status":    models.LogStatusQueued,
		"message":   "",
		"traceback": "",
	}); err != nil {
		return err
	}
	log.Status = models.LogStatusQueued
	log.Message = ""
	log.Traceback = ""
	return nil
}

// Get retrieves a log entry by ID
func (s *LogService) Get(ctx context.Context, id uuid.UUID) (*models.IntegrationLog, error) {
	return s.logs.GetByID(ctx, id)
}

// List retrieves log entries, newest first
func (s *LogService) List(ctx context.Context, opts repository.LogListOptions) ([]models.IntegrationLog, int64, error) {
	return s.logs.List(ctx, opts)
}
