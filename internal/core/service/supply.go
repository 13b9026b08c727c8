package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// SupplyItem is one inbound product definition together with the delivered count.
type SupplyItem struct {
	ProductID     domain.ProductID
	SupplierID    int64
	Name          string
	UnitVolume    float64
	UnitPrice     decimal.Decimal
	ShelfLifeDays int
	Quantity      int
}

func (i SupplyItem) Product() domain.Product {
	return domain.Product{
		ID:            i.ProductID,
		SupplierID:    i.SupplierID,
		Name:          i.Name,
		UnitVolume:    i.UnitVolume,
		UnitPrice:     i.UnitPrice,
		ShelfLifeDays: i.ShelfLifeDays,
	}
}

// SupplyTarget picks the single location type a batch is stored in: General
// when every item keeps for the threshold, Cold when none does, Sorting otherwise.
func SupplyTarget(items []SupplyItem) domain.LocationType {
	long, short := 0, 0
	for _, item := range items {
		if item.ShelfLifeDays >= domain.ShortLifeThresholdDays {
			long++
		} else {
			short++
		}
	}
	switch {
	case short == 0:
		return domain.General
	case long == 0:
		return domain.Cold
	default:
		return domain.Sorting
	}
}

// ProcessSupply registers the batch's products and spreads each item over the
// target locations, roomiest first. A partially placed batch is not an error:
// it returns false and leaves an audit note per leftover.
func (e *Engine) ProcessSupply(items []SupplyItem) (bool, error) {
	if len(items) == 0 {
		return false, fmt.Errorf("%w: supply has no items", domain.ErrInvalidArgument)
	}
	catalog := e.network.Catalog()
	for _, item := range items {
		if err := item.Product().Validate(); err != nil {
			return false, err
		}
		if item.Quantity <= 0 {
			return false, fmt.Errorf("%w: supply quantity for product %d must be positive, got %d",
				domain.ErrInvalidArgument, item.ProductID, item.Quantity)
		}
		existing, err := catalog.Get(item.ProductID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return false, err
		}
		if err == nil && existing.Deleted {
			return false, fmt.Errorf("%w: product %d is deleted", domain.ErrInvalidArgument, item.ProductID)
		}
	}

	target := SupplyTarget(items)
	candidates := e.network.OfType(target)
	if len(candidates) == 0 {
		return false, fmt.Errorf("%w: no %s locations to receive supply", domain.ErrFailedPrecondition, target)
	}

	products := make([]domain.Product, len(items))
	for i, item := range items {
		p, err := catalog.Upsert(item.Product())
		if err != nil {
			return false, err
		}
		products[i] = p
	}

	fullyPlaced := true
	for i, item := range items {
		remaining, err := e.place(products[i], item.Quantity, candidates)
		if err != nil {
			return false, err
		}
		if remaining > 0 {
			fullyPlaced = false
			e.audit.Notef("supply: %d x %s (product %d) could not be placed in %s locations",
				remaining, products[i].Name, products[i].ID, target)
			e.logger.Warn("supply item not fully placed",
				productField(products[i].ID),
				zap.Int("requested", item.Quantity),
				zap.Int("leftover", remaining),
				zap.Stringer("target", target),
			)
		}
	}
	return fullyPlaced, nil
}

// place greedily adds quantity units across candidates and returns what is left over.
func (e *Engine) place(product domain.Product, quantity int, candidates []*domain.Location) (int, error) {
	remaining := quantity
	for _, loc := range rankByFreeVolume(candidates) {
		if remaining == 0 {
			break
		}
		n := min(remaining, loc.CapacityForProduct(product))
		if n == 0 {
			continue
		}
		ok, err := loc.Add(product, n)
		if err != nil {
			return remaining, err
		}
		if !ok {
			// Space was taken concurrently since CapacityForProduct; try the next location.
			continue
		}
		if err := e.audit.RecordMovement(product, n, domain.SupplyEndpoint, loc.Endpoint()); err != nil {
			return remaining, err
		}
		remaining -= n
	}
	return remaining, nil
}
