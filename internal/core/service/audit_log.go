package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// AuditLog is the append-only record of committed movements and operational
// notes. Entries can optionally be forwarded to a queue for export.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	now     func() time.Time

	fwdMu   sync.RWMutex
	forward chan domain.AuditEntry
	closed  bool
}

func NewAuditLog() *AuditLog {
	return &AuditLog{now: time.Now}
}

// Forward enables export of every entry recorded from now on onto a queue of
// the given size. Call it once before concurrent use.
func (a *AuditLog) Forward(queueSize int) <-chan domain.AuditEntry {
	a.fwdMu.Lock()
	defer a.fwdMu.Unlock()

	if a.forward == nil {
		a.forward = make(chan domain.AuditEntry, queueSize)
	}
	return a.forward
}

// Close stops forwarding and closes the export queue.
func (a *AuditLog) Close() {
	a.fwdMu.Lock()
	defer a.fwdMu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	if a.forward != nil {
		close(a.forward)
	}
}

// RecordMovement appends a movement. Blank source or destination labels are recorded as "none".
func (a *AuditLog) RecordMovement(product domain.Product, quantity int, source, destination domain.Endpoint) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: movement quantity must be positive, got %d", domain.ErrInvalidArgument, quantity)
	}
	if strings.TrimSpace(source.Label) == "" {
		source.Label = domain.NoneLabel
	}
	if strings.TrimSpace(destination.Label) == "" {
		destination.Label = domain.NoneLabel
	}

	a.append(domain.AuditEntry{
		Kind:          domain.AuditKindMovement,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      quantity,
		Source:        source.Label,
		Destination:   destination.Label,
		SourceID:      source.ID,
		DestinationID: destination.ID,
		Message: fmt.Sprintf("moved %d x %s (product %d) from %s to %s",
			quantity, product.Name, product.ID, source.Label, destination.Label),
	})
	return nil
}

// RecordNote appends an operational note; blank messages are ignored.
func (a *AuditLog) RecordNote(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	a.append(domain.AuditEntry{
		Kind:    domain.AuditKindNote,
		Message: message,
	})
}

func (a *AuditLog) Notef(format string, args ...any) {
	a.RecordNote(fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log in insertion order.
func (a *AuditLog) Entries() []domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]domain.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *AuditLog) append(entry domain.AuditEntry) {
	entry.ID = uuid.New()

	a.mu.Lock()
	entry.Time = a.now()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	a.fwdMu.RLock()
	defer a.fwdMu.RUnlock()
	if a.forward != nil && !a.closed {
		a.forward <- entry
	}
}
