package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AuditKind string

const (
	AuditKindMovement AuditKind = "movement"
	AuditKindNote     AuditKind = "note"
)

// Origin and target labels used when a movement has no location on one side.
const (
	SupplyLabel = "supply"
	NoneLabel   = "none"
)

// Endpoint is one side of a movement. ID is zero for supply or none.
type Endpoint struct {
	ID    LocationID
	Label string
}

var SupplyEndpoint = Endpoint{Label: SupplyLabel}

// AuditEntry is an immutable record of a committed movement or an operational note.
type AuditEntry struct {
	ID          uuid.UUID
	Time        time.Time
	Kind        AuditKind
	ProductID   ProductID
	ProductName string
	Quantity    int
	Source      string
	Destination string
	Message     string

	// Location ids of a movement's endpoints; zero for supply or none.
	SourceID      LocationID
	DestinationID LocationID
}

func (e AuditEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(time.RFC3339), e.Message)
}
