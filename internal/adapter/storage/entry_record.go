package storage

import (
	"time"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// EntryRecord is the exported shape of an audit entry.
type EntryRecord struct {
	ID            string    `json:"id"`
	Time          time.Time `json:"time"`
	Kind          string    `json:"kind"`
	ProductID     int64     `json:"product_id,omitempty"`
	ProductName   string    `json:"product_name,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Source        string    `json:"source,omitempty"`
	Destination   string    `json:"destination,omitempty"`
	SourceID      int64     `json:"source_id,omitempty"`
	DestinationID int64     `json:"destination_id,omitempty"`
	Message       string    `json:"message"`
}

// NewEntryRecord converts an audit entry to its exported shape.
func NewEntryRecord(e domain.AuditEntry) EntryRecord {
	return EntryRecord{
		ID:            e.ID.String(),
		Time:          e.Time,
		Kind:          string(e.Kind),
		ProductID:     int64(e.ProductID),
		ProductName:   e.ProductName,
		Quantity:      e.Quantity,
		Source:        e.Source,
		Destination:   e.Destination,
		SourceID:      int64(e.SourceID),
		DestinationID: int64(e.DestinationID),
		Message:       e.Message,
	}
}

