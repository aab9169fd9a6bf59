package services

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"shopify-integration-service/internal/clients"
	"shopify-integration-service/internal/models"
	"shopify-integration-service/internal/repository"
)

// SyncContext carries what one synchronization needs: the shop, its platform
// client and a store that is usually bound to the sync's transaction
type SyncContext struct {
	Shop   *models.Shop
	Client clients.PlatformClient
	Store  *repository.Store
	Logger *logrus.Entry
	Clock  func() time.Time
}

// WithStore returns a copy bound to another store
func (sc *SyncContext) WithStore(store *repository.Store) *SyncContext {
	cp := *sc
	cp.Store = store
	return &cp
}

func (sc *SyncContext) now() time.Time {
	if sc.Clock != nil {
		return sc.Clock()
	}
	return time.Now()
}

func (sc *SyncContext) logger() *logrus.Entry {
	if sc.Logger != nil {
		return sc.Logger
	}
	return logrus.NewEntry(logrus.StandardLogger()).WithField("shop", sc.Shop.Name)
}

// OutcomeStatus is the result class of one reconciler step
type OutcomeStatus int

const (
	OutcomeSkipped OutcomeStatus = iota
	OutcomeSucceeded
	OutcomeFailed
)

// Outcome is what a reconciler step reports back to the integration log
type Outcome struct {
	Status  OutcomeStatus
	Doc     models.Document
	Err     error
	Message string
}

// Skipped reports an idempotent no-op, optionally with the existing document
func Skipped(doc models.Document, message string) Outcome {
	return Outcome{Status: OutcomeSkipped, Doc: doc, Message: message}
}

// Succeeded reports the document the step produced
func Succeeded(doc models.Document) Outcome {
	return Outcome{Status: OutcomeSucceeded, Doc: doc}
}

// Failed reports an error. The error is given a stack if it has none.
func Failed(err error) Outcome {
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		err = errors.WithStack(err)
	}
	return Outcome{Status: OutcomeFailed, Err: err}
}

// LogStatus maps the outcome to an integration log status
func (o Outcome) LogStatus() models.LogStatus {
	switch o.Status {
	case OutcomeSucceeded:
		return models.LogStatusSuccess
	case OutcomeFailed:
		return models.LogStatusError
	}
	return models.LogStatusSkipped
}

// Summary is the human readable log message of the outcome
func (o Outcome) Summary() string {
	switch {
	case o.Err != nil:
		return o.Err.Error()
	case o.Message != "":
		return o.Message
	case o.Doc != nil && o.Status == OutcomeSkipped:
		return fmt.Sprintf("%s %s already exists", o.Doc.DocType(), o.Doc.DocName())
	case o.Doc != nil:
		return fmt.Sprintf("created %s %s", o.Doc.DocType(), o.Doc.DocName())
	}
	return ""
}

// Traceback renders the error with its stack trace
func (o Outcome) Traceback() string {
	if o.Err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", o.Err)
}
