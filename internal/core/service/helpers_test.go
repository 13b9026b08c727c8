package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

type locationSpec struct {
	id       domain.LocationID
	typ      domain.LocationType
	capacity float64
}

func newTestEngine(t *testing.T, specs ...locationSpec) *Engine {
	t.Helper()
	locations := make([]*domain.Location, 0, len(specs))
	for _, s := range specs {
		loc, err := domain.NewLocation(s.id, s.typ, s.capacity, "dock "+s.typ.String())
		if err != nil {
			t.Fatalf("new location: %v", err)
		}
		locations = append(locations, loc)
	}
	network, err := domain.NewNetwork(domain.NewCatalog(), locations...)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	return NewEngine(network, NewAuditLog(), zaptest.NewLogger(t))
}

func location(t *testing.T, e *Engine, id domain.LocationID) *domain.Location {
	t.Helper()
	loc, err := e.Network().Location(id)
	if err != nil {
		t.Fatalf("location %d: %v", id, err)
	}
	return loc
}

func product(id domain.ProductID, unitVolume float64, shelfLife int) domain.Product {
	return domain.Product{
		ID:            id,
		SupplierID:    1,
		Name:          fmt.Sprintf("product-%d", id),
		UnitVolume:    unitVolume,
		UnitPrice:     decimal.NewFromInt(3),
		ShelfLifeDays: shelfLife,
	}
}

func supplyItem(id domain.ProductID, unitVolume float64, shelfLife, quantity int) SupplyItem {
	p := product(id, unitVolume, shelfLife)
	return SupplyItem{
		ProductID:     p.ID,
		SupplierID:    p.SupplierID,
		Name:          p.Name,
		UnitVolume:    p.UnitVolume,
		UnitPrice:     p.UnitPrice,
		ShelfLifeDays: p.ShelfLifeDays,
		Quantity:      quantity,
	}
}

func stock(t *testing.T, loc *domain.Location, p domain.Product, quantity int) {
	t.Helper()
	ok, err := loc.Add(p, quantity)
	if err != nil || !ok {
		t.Fatalf("stock %d x %d into %d: ok=%v err=%v", quantity, p.ID, loc.ID(), ok, err)
	}
}

func quantityOf(loc *domain.Location, id domain.ProductID) int {
	line, _ := loc.Line(id)
	return line.Quantity
}

func notesContaining(log *AuditLog, substr string) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range log.Entries() {
		if e.Kind == domain.AuditKindNote && strings.Contains(e.Message, substr) {
			out = append(out, e)
		}
	}
	return out
}

func movements(log *AuditLog) []domain.AuditEntry {
	var out []domain.AuditEntry
	for _, e := range log.Entries() {
		if e.Kind == domain.AuditKindMovement {
			out = append(out, e)
		}
	}
	return out
}
