package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

type TransferItem struct {
	ProductID domain.ProductID
	Quantity  int
}

type movedItem struct {
	product  domain.Product
	quantity int
}

// Transfer moves every item from source to destination or nothing at all.
// It returns false without error when the source lacks stock or the
// destination lacks room; both locations are then left as they were.
func (e *Engine) Transfer(source, destination *domain.Location, items []TransferItem) (bool, error) {
	if source == nil || destination == nil {
		return false, fmt.Errorf("%w: transfer needs a source and a destination", domain.ErrInvalidArgument)
	}
	if source == destination {
		return false, fmt.Errorf("%w: transfer source and destination are both location %d",
			domain.ErrInvalidArgument, source.ID())
	}
	if len(items) == 0 {
		return false, fmt.Errorf("%w: transfer has no items", domain.ErrInvalidArgument)
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return false, fmt.Errorf("%w: transfer quantity for product %d must be positive, got %d",
				domain.ErrInvalidArgument, item.ProductID, item.Quantity)
		}
	}

	log := e.logger.With(
		zap.Int64("source_id", int64(source.ID())),
		zap.Int64("destination_id", int64(destination.ID())),
	)

	held := make(map[domain.ProductID]domain.Line)
	for _, line := range source.Snapshot() {
		held[line.Product.ID] = line
	}

	requested := make(map[domain.ProductID]int, len(items))
	for _, item := range items {
		line, ok := held[item.ProductID]
		if !ok {
			log.Info("transfer rejected: product not held by source", productField(item.ProductID))
			return false, nil
		}
		requested[item.ProductID] += item.Quantity
		if line.Quantity < requested[item.ProductID] {
			log.Info("transfer rejected: insufficient source stock",
				productField(item.ProductID),
				zap.Int("held", line.Quantity),
				zap.Int("requested", requested[item.ProductID]),
			)
			return false, nil
		}
	}

	// A merge at the destination restates its held units at the source's unit volume.
	var volume float64
	for id, quantity := range requested {
		product := held[id].Product
		volume += product.UnitVolume * float64(quantity)
		if line, ok := destination.Line(id); ok {
			volume += product.UnitVolume*float64(line.Quantity) - line.TotalVolume()
		}
	}

	if free := destination.FreeVolume(); volume > free+domain.VolumeTolerance {
		log.Info("transfer rejected: insufficient destination capacity",
			zap.Float64("volume", volume),
			zap.Float64("free", free),
		)
		return false, nil
	}

	moved := make([]movedItem, 0, len(items))
	for _, item := range items {
		product := held[item.ProductID].Product

		ok, err := source.Remove(item.ProductID, item.Quantity)
		if err != nil || !ok {
			log.Warn("transfer apply failed at source, rolling back",
				productField(item.ProductID), zap.Int("moved_items", len(moved)), zap.Error(err))
			e.rollback(source, destination, moved)
			return false, nil
		}

		ok, err = destination.Add(product, item.Quantity)
		if err != nil || !ok {
			log.Warn("transfer apply failed at destination, rolling back",
				productField(item.ProductID), zap.Int("moved_items", len(moved)), zap.Error(err))
			e.mustRestore(source, product, item.Quantity)
			e.rollback(source, destination, moved)
			return false, nil
		}

		moved = append(moved, movedItem{product: product, quantity: item.Quantity})
	}

	from, to := source.Endpoint(), destination.Endpoint()
	for _, m := range moved {
		if err := e.audit.RecordMovement(m.product, m.quantity, from, to); err != nil {
			return true, err
		}
	}
	log.Debug("transfer committed", zap.Int("items", len(moved)), zap.Float64("volume", volume))
	return true, nil
}

// rollback undoes already-moved items in reverse order. Failure here means
// the ledger invariants no longer hold, which is not recoverable.
func (e *Engine) rollback(source, destination *domain.Location, moved []movedItem) {
	for i := len(moved) - 1; i >= 0; i-- {
		m := moved[i]
		ok, err := destination.Remove(m.product.ID, m.quantity)
		if err != nil || !ok {
			e.logger.Error("transfer rollback failed at destination",
				locationField(destination), productField(m.product.ID), zap.Int("quantity", m.quantity), zap.Error(err))
			panic(fmt.Sprintf("transfer rollback: cannot take %d of product %d back from location %d",
				m.quantity, m.product.ID, destination.ID()))
		}
		e.mustRestore(source, m.product, m.quantity)
	}
}

func (e *Engine) mustRestore(source *domain.Location, product domain.Product, quantity int) {
	ok, err := source.Add(product, quantity)
	if err == nil && ok {
		return
	}
	e.logger.Error("transfer rollback failed at source",
		locationField(source), productField(product.ID), zap.Int("quantity", quantity), zap.Error(err))
	panic(fmt.Sprintf("transfer rollback: cannot return %d of product %d to location %d",
		quantity, product.ID, source.ID()))
}
