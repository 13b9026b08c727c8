package port

import (
	"context"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// JournalRepository receives a copy of every audit entry for export.
// The in-memory audit log stays authoritative; journals are never read back.
type JournalRepository interface {
	AppendEntry(ctx context.Context, entry domain.AuditEntry) error
}
