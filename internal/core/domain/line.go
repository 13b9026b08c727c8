package domain

import "github.com/shopspring/decimal"

// Line is one product held by a location together with its count.
type Line struct {
	Product  Product
	Quantity int
}

func (l Line) TotalVolume() float64 {
	return l.Product.UnitVolume * float64(l.Quantity)
}

func (l Line) TotalCost() decimal.Decimal {
	return l.Product.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
