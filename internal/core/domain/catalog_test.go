package domain

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCatalogUpsert_CreateThenUpdate(t *testing.T) {
	c := NewCatalog()

	p, err := c.Upsert(testProduct(1, 2, 40))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.ID != 1 {
		t.Errorf("expected id 1, got %d", p.ID)
	}

	updated := testProduct(1, 3, 5)
	updated.Name = "renamed"
	if _, err := c.Upsert(updated); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	got, err := c.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "renamed" || got.UnitVolume != 3 || got.ShelfLifeDays != 5 {
		t.Errorf("expected attributes replaced, got %+v", got)
	}
	if len(c.List()) != 1 {
		t.Errorf("expected one product, got %d", len(c.List()))
	}
}

func TestCatalogUpsert_Validation(t *testing.T) {
	base := testProduct(1, 1, 1)
	tests := []struct {
		name   string
		mutate func(p *Product)
	}{
		{"zero id", func(p *Product) { p.ID = 0 }},
		{"zero supplier", func(p *Product) { p.SupplierID = 0 }},
		{"blank name", func(p *Product) { p.Name = "  " }},
		{"zero volume", func(p *Product) { p.UnitVolume = 0 }},
		{"zero price", func(p *Product) { p.UnitPrice = decimal.Zero }},
		{"negative price", func(p *Product) { p.UnitPrice = decimal.NewFromInt(-1) }},
		{"negative shelf life", func(p *Product) { p.ShelfLifeDays = -1 }},
	}

	c := NewCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if _, err := c.Upsert(p); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
	if len(c.List()) != 0 {
		t.Error("expected nothing registered")
	}
}

func TestCatalogDelete(t *testing.T) {
	c := NewCatalog()
	if err := c.Delete(5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	c.Upsert(testProduct(5, 1, 40))
	if err := c.Delete(5); err != nil {
		t.Fatalf("delete: %v", err)
	}

	c.Upsert(testProduct(5, 2, 40))
	p, _ := c.Get(5)
	if !p.Deleted {
		t.Error("expected soft delete to survive upsert")
	}
	if _, err := c.Get(6); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogUpsert_Concurrent(t *testing.T) {
	c := NewCatalog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := testProduct(ProductID(i%5+1), float64(i+1), 40)
			p.Name = fmt.Sprintf("p-%d", i)
			if _, err := c.Upsert(p); err != nil {
				t.Errorf("upsert: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n := len(c.List()); n != 5 {
		t.Errorf("expected 5 products, got %d", n)
	}
}
