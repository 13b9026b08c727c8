package handler

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/core/service"
)

type memCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemCache() *memCache {
	return &memCache{keys: make(map[string]bool)}
}

func (m *memCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memCache) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// newTestInventory builds General #1, Cold #2 and Sorting #3, plus Disposal #4
// when withDisposal is set.
func newTestInventory(t *testing.T, withDisposal bool) *service.InventoryService {
	t.Helper()
	types := []domain.LocationType{domain.General, domain.Cold, domain.Sorting}
	if withDisposal {
		types = append(types, domain.Disposal)
	}

	locations := make([]*domain.Location, 0, len(types))
	for i, typ := range types {
		loc, err := domain.NewLocation(domain.LocationID(i+1), typ, 100, "aisle "+typ.String())
		if err != nil {
			t.Fatalf("new location: %v", err)
		}
		locations = append(locations, loc)
	}
	network, err := domain.NewNetwork(domain.NewCatalog(), locations...)
	if err != nil {
		t.Fatalf("new network: %v", err)
	}

	logger := zaptest.NewLogger(t)
	engine := service.NewEngine(network, service.NewAuditLog(), logger)
	return service.NewInventoryService(engine, newMemCache(), logger)
}
