package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/port"
)

const journalWriteTimeout = 5 * time.Second

// JournalPool drains the audit export queue into every configured journal.
type JournalPool struct {
	wg sync.WaitGroup
}

func StartJournalPool(workers int, queue <-chan domain.AuditEntry, journals []port.JournalRepository, logger *zap.Logger) *JournalPool {
	if workers < 1 {
		workers = 1
	}
	p := &JournalPool{}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			journalLoop(id, queue, journals, logger)
		}(i)
	}
	logger.Info("started journal workers", zap.Int("workers", workers), zap.Int("journals", len(journals)))
	return p
}

// Wait blocks until the queue is closed and drained.
func (p *JournalPool) Wait() {
	p.wg.Wait()
}

func journalLoop(id int, queue <-chan domain.AuditEntry, journals []port.JournalRepository, logger *zap.Logger) {
	for entry := range queue {
		for _, journal := range journals {
			ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
			if err := journal.AppendEntry(ctx, entry); err != nil {
				logger.Error("journal export failed",
					zap.Int("worker", id),
					zap.String("entry_id", entry.ID.String()),
					zap.Error(err),
				)
			}
			cancel()
		}
	}
}
