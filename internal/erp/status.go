package erp

import (
	"errors"
	"fmt"

	"shopify-integration-service/internal/models"
)

// ErrInvalidTransition is returned when a document is submitted or cancelled
// from the wrong state
var ErrInvalidTransition = errors.New("invalid document status transition")

// CheckSubmit validates a draft → submitted transition
func CheckSubmit(doc models.Document, status models.DocStatus) error {
	if status != models.DocStatusDraft {
		return fmt.Errorf("cannot submit %s %s in state %s: %w", doc.DocType(), doc.DocName(), status, ErrInvalidTransition)
	}
	return nil
}

// CheckCancel validates a submitted → cancelled transition
func CheckCancel(doc models.Document, status models.DocStatus) error {
	if status != models.DocStatusSubmitted {
		return fmt.Errorf("cannot cancel %s %s in state %s: %w", doc.DocType(), doc.DocName(), status, ErrInvalidTransition)
	}
	return nil
}

// SubmittedInvoiceStatus is the status an invoice takes on submit
func SubmittedInvoiceStatus(si *models.SalesInvoice) string {
	if si.IsReturn {
		return models.InvoiceStatusReturn
	}
	return models.InvoiceStatusUnpaid
}
