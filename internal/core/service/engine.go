package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// Engine runs the placement algorithms over a network: transfers, supply
// intake, sweeps and diagnostics.
//
// Locking: no engine operation ever holds two location locks at once. Every
// Add, Remove and read takes exactly one location's lock for the duration of
// an in-memory check-and-mutate, so transfers between the same pair in
// opposite directions cannot deadlock. Stale pre-checks are handled by
// compensation in Transfer.
type Engine struct {
	network *domain.Network
	audit   *AuditLog
	logger  *zap.Logger
}

func NewEngine(network *domain.Network, audit *AuditLog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		network: network,
		audit:   audit,
		logger:  logger,
	}
}

func (e *Engine) Network() *domain.Network {
	return e.network
}

func (e *Engine) Audit() *AuditLog {
	return e.audit
}

// rankByFreeVolume orders candidates by current free volume, largest first.
// Ties keep bootstrap order.
func rankByFreeVolume(candidates []*domain.Location) []*domain.Location {
	type ranked struct {
		loc  *domain.Location
		free float64
	}
	rs := make([]ranked, len(candidates))
	for i, loc := range candidates {
		rs[i] = ranked{loc: loc, free: loc.FreeVolume()}
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].free > rs[j].free })

	out := make([]*domain.Location, len(rs))
	for i, r := range rs {
		out[i] = r.loc
	}
	return out
}

func locationField(loc *domain.Location) zap.Field {
	return zap.Int64("location_id", int64(loc.ID()))
}

func productField(id domain.ProductID) zap.Field {
	return zap.Int64("product_id", int64(id))
}
