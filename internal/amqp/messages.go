package amqp

import (
	"encoding/json"
	"time"
)

// Task kinds carried on the work queue. The server publishes, the report
// worker consumes.
const (
	KindReportExport = "report_export"
	KindInvoiceSync  = "invoice_sync"
)

// TaskMessage is a lightweight work item. Export tasks carry the format and
// the report period; invoice sync tasks carry only the invoice ID and the
// worker fetches the full row from the database.
type TaskMessage struct {
	Kind      string    `json:"kind"`
	Format    string    `json:"format,omitempty"`
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	InvoiceID int64     `json:"invoice_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReportExportMessage creates an export task for the given format and period.
func NewReportExportMessage(format string, year, month int) *TaskMessage {
	return &TaskMessage{
		Kind:      KindReportExport,
		Format:    format,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// NewInvoiceSyncMessage creates a ledger mirror task for one invoice.
func NewInvoiceSyncMessage(invoiceID int64) *TaskMessage {
	return &TaskMessage{
		Kind:      KindInvoiceSync,
		InvoiceID: invoiceID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TaskMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TaskMessageFromJSON creates a message from JSON bytes
func TaskMessageFromJSON(data []byte) (*TaskMessage, error) {
	var msg TaskMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
