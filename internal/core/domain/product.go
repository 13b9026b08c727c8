package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ShortLifeThresholdDays splits stock between General (at or above) and Cold (below) storage.
const ShortLifeThresholdDays = 30

type ProductID int64

type Product struct {
	ID            ProductID
	SupplierID    int64
	Name          string
	UnitVolume    float64
	UnitPrice     decimal.Decimal
	ShelfLifeDays int
	Deleted       bool
}

// Validate checks every attribute constraint of a product definition.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: product id must be positive, got %d", ErrInvalidArgument, p.ID)
	}
	if p.SupplierID <= 0 {
		return fmt.Errorf("%w: supplier id must be positive, got %d", ErrInvalidArgument, p.SupplierID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", ErrInvalidArgument)
	}
	if p.UnitVolume <= 0 {
		return fmt.Errorf("%w: unit volume must be positive, got %v", ErrInvalidArgument, p.UnitVolume)
	}
	if !p.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: unit price must be positive, got %s", ErrInvalidArgument, p.UnitPrice)
	}
	if p.ShelfLifeDays < 0 {
		return fmt.Errorf("%w: shelf life cannot be negative, got %d", ErrInvalidArgument, p.ShelfLifeDays)
	}
	return nil
}

func (p Product) Expired() bool {
	return p.ShelfLifeDays <= 0
}

// StorageType is the location type this product belongs in by shelf life alone.
func (p Product) StorageType() LocationType {
	if p.ShelfLifeDays >= ShortLifeThresholdDays {
		return General
	}
	return Cold
}
