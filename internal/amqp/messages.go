package amqp

import (
	"encoding/json"
	"time"

	"khata/internal/core"
)

// InvoiceSyncMessage asks the worker to mirror one invoice to the
// accounting spreadsheet. It carries only the id; the worker re-reads
// the current ledger state, so a later payment is never lost to a
// stale message body.
type InvoiceSyncMessage struct {
	InvoiceID core.InvoiceID `json:"invoiceId"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewInvoiceSyncMessage creates a sync message for the given invoice.
func NewInvoiceSyncMessage(id core.InvoiceID) *InvoiceSyncMessage {
	return &InvoiceSyncMessage{
		InvoiceID: id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *InvoiceSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvoiceSyncMessageFromJSON creates a message from JSON bytes
func InvoiceSyncMessageFromJSON(data []byte) (*InvoiceSyncMessage, error) {
	var msg InvoiceSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
