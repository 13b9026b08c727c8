package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// SweepReport counts what one sweep pass examined and moved.
type SweepReport struct {
	LinesExamined int
	Moved         int
	Stranded      int
}

// RedistributeSorting empties every Sorting location into the General or
// Cold pool by shelf life. Each Sorting location is read once at the start of
// its pass; stock that arrives during the pass waits for the next sweep.
func (e *Engine) RedistributeSorting() (SweepReport, error) {
	var report SweepReport
	for _, src := range e.network.OfType(domain.Sorting) {
		for _, line := range src.Snapshot() {
			report.LinesExamined++

			pool := e.network.OfType(line.Product.StorageType())
			remaining := line.Quantity
			for _, dst := range rankByFreeVolume(pool) {
				if remaining == 0 {
					break
				}
				if dst == src {
					continue
				}
				n := min(remaining, dst.CapacityForProduct(line.Product))
				if n == 0 {
					continue
				}
				ok, err := e.Transfer(src, dst, []TransferItem{{ProductID: line.Product.ID, Quantity: n}})
				if err != nil {
					return report, err
				}
				if ok {
					remaining -= n
					report.Moved += n
				}
			}

			if remaining > 0 {
				report.Stranded += remaining
				e.audit.Notef("redistribution: %d x %s (product %d) left in %s",
					remaining, line.Product.Name, line.Product.ID, src.Label())
			}
		}
	}
	e.logger.Info("redistribution sweep finished",
		zap.Int("lines", report.LinesExamined),
		zap.Int("moved", report.Moved),
		zap.Int("stranded", report.Stranded),
	)
	return report, nil
}

// DisposeExpired moves expired stock from every other location into the
// disposal location, one single-item transfer at a time.
func (e *Engine) DisposeExpired() (SweepReport, error) {
	var report SweepReport
	disposal, ok := e.network.Disposal()
	if !ok {
		return report, fmt.Errorf("%w: network has no disposal location", domain.ErrFailedPrecondition)
	}

	for _, src := range e.network.Locations() {
		if src == disposal || src.Type() == domain.Disposal {
			continue
		}
		for _, line := range src.Snapshot() {
			if !line.Product.Expired() {
				continue
			}
			report.LinesExamined++

			remaining := line.Quantity
			for remaining > 0 {
				n := min(remaining, disposal.CapacityForProduct(line.Product))
				if n == 0 {
					break
				}
				moved, err := e.Transfer(src, disposal, []TransferItem{{ProductID: line.Product.ID, Quantity: n}})
				if err != nil {
					return report, err
				}
				if !moved {
					break
				}
				remaining -= n
				report.Moved += n
			}

			if remaining > 0 {
				report.Stranded += remaining
				e.audit.Notef("disposal: %d x %s (product %d) stranded in %s",
					remaining, line.Product.Name, line.Product.ID, src.Label())
			}
		}
	}
	e.logger.Info("disposal sweep finished",
		zap.Int("lines", report.LinesExamined),
		zap.Int("moved", report.Moved),
		zap.Int("stranded", report.Stranded),
	)
	return report, nil
}
