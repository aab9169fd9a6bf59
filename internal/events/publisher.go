package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects published after an integration log is written
const (
	SubjectOrderSynced  = "shopify.order.synced"
	SubjectPayoutSynced = "shopify.payout.synced"
	SubjectSyncFailed   = "shopify.sync.failed"
)

// SyncEvent describes one finished synchronization attempt
type SyncEvent struct {
	EventType string    `json:"event_type"`
	ShopID    string    `json:"shop_id,omitempty"`
	ShopName  string    `json:"shop_name,omitempty"`
	LogID     string    `json:"log_id,omitempty"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	DocType   string    `json:"doc_type,omitempty"`
	DocName   string    `json:"doc_name,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits sync events. Publishing is best effort; callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *SyncEvent) error
	Close()
}

// NATSPublisher publishes events as JSON on core NATS subjects
type NATSPublisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewNATSPublisher connects to NATS at url
func NewNATSPublisher(url string, logger *logrus.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("shopify-integration-service"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// Publish marshals event and publishes it on subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event *SyncEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.EventType == "" {
		event.EventType = subject
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.WithFields(logrus.Fields{
		"subject": subject,
		"log_id":  event.LogID,
	}).Debug("published event")
	return nil
}

// Close drains the connection
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// NopPublisher drops every event. It is used when NATS_URL is not set.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *SyncEvent) error { return nil }
func (NopPublisher) Close()                                            {}
