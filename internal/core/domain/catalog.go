package domain

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is the registry of product definitions keyed by id. Products are
// stored by value: an upsert replaces the stored value, so holders of an
// older copy must call Get to observe new attributes.
type Catalog struct {
	mu       sync.Mutex
	products map[ProductID]Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[ProductID]Product)}
}

// Upsert registers p or overwrites every attribute of the existing product
// with the same id. The soft-delete flag of an existing product is kept.
func (c *Catalog) Upsert(p Product) (Product, error) {
	if err := p.Validate(); err != nil {
		return Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.products[p.ID]; ok {
		p.Deleted = existing.Deleted
	}
	c.products[p.ID] = p
	return p, nil
}

func (c *Catalog) Get(id ProductID) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, nil
}

// Delete soft-deletes a product; it stays resolvable but can no longer be stocked.
func (c *Catalog) Delete(id ProductID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[id]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	p.Deleted = true
	c.products[id] = p
	return nil
}

// List returns every product ordered by id.
func (c *Catalog) List() []Product {
	c.mu.Lock()
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
