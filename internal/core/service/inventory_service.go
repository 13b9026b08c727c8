package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
	"github.com/rl1809/warehouse-ledger/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

const supplyKeyPrefix = "supply:"

type SupplyResult struct {
	RequestID   string
	FullyPlaced bool
}

// InventoryService is the request boundary over the engine: id resolution,
// idempotent supply submission and read models.
type InventoryService struct {
	network *domain.Network
	engine  *Engine
	audit   *AuditLog
	cache   port.CacheRepository
	logger  *zap.Logger
}

// NewInventoryService wires the facade. cache may be nil, which disables
// duplicate supply detection.
func NewInventoryService(engine *Engine, cache port.CacheRepository, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		network: engine.Network(),
		engine:  engine,
		audit:   engine.Audit(),
		cache:   cache,
		logger:  logger,
	}
}

func (s *InventoryService) ListLocations() []domain.LocationSummary {
	locations := s.network.Locations()
	out := make([]domain.LocationSummary, len(locations))
	for i, loc := range locations {
		out[i] = loc.Summary()
	}
	return out
}

func (s *InventoryService) GetLocation(id domain.LocationID) (domain.LocationSummary, []domain.Line, error) {
	loc, err := s.network.Location(id)
	if err != nil {
		return domain.LocationSummary{}, nil, err
	}
	summary, lines := loc.Inspect()
	return summary, lines, nil
}

func (s *InventoryService) UpdateLocation(id domain.LocationID, typ domain.LocationType, capacity float64, address string) error {
	loc, err := s.network.Location(id)
	if err != nil {
		return err
	}
	if err := loc.UpdateDetails(typ, capacity, address); err != nil {
		return err
	}
	s.audit.Notef("location %d updated: type=%s capacity=%v address=%q", id, typ, capacity, address)
	return nil
}

// SubmitSupply processes a supply batch once per request id. A blank request
// id is replaced by a generated one and never collides.
func (s *InventoryService) SubmitSupply(ctx context.Context, requestID string, items []SupplyItem) (SupplyResult, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	result := SupplyResult{RequestID: requestID}
	key := supplyKeyPrefix + requestID

	if s.cache != nil {
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return result, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return result, ErrDuplicateRequest
		}
	}

	fullyPlaced, err := s.engine.ProcessSupply(items)
	if err != nil {
		if s.cache != nil {
			if releaseErr := s.cache.ReleaseIdempotency(ctx, key); releaseErr != nil {
				s.logger.Error("failed to release idempotency key",
					zap.String("request_id", requestID), zap.Error(releaseErr))
			}
		}
		return result, err
	}

	result.FullyPlaced = fullyPlaced
	s.logger.Info("supply processed",
		zap.String("request_id", requestID),
		zap.Int("items", len(items)),
		zap.Bool("fully_placed", fullyPlaced),
	)
	return result, nil
}

// SubmitTransfer resolves both locations and moves productIDs[i] x quantities[i].
func (s *InventoryService) SubmitTransfer(sourceID, destinationID domain.LocationID, productIDs []domain.ProductID, quantities []int) (bool, error) {
	if len(productIDs) != len(quantities) {
		return false, fmt.Errorf("%w: %d product ids but %d quantities",
			domain.ErrInvalidArgument, len(productIDs), len(quantities))
	}
	source, err := s.network.Location(sourceID)
	if err != nil {
		return false, err
	}
	destination, err := s.network.Location(destinationID)
	if err != nil {
		return false, err
	}

	items := make([]TransferItem, len(productIDs))
	for i := range productIDs {
		items[i] = TransferItem{ProductID: productIDs[i], Quantity: quantities[i]}
	}
	return s.engine.Transfer(source, destination, items)
}

func (s *InventoryService) Analyze() []LocationReport {
	return s.engine.Analyze()
}

func (s *InventoryService) RedistributeSorting() (SweepReport, error) {
	return s.engine.RedistributeSorting()
}

func (s *InventoryService) DisposeExpired() (SweepReport, error) {
	return s.engine.DisposeExpired()
}

func (s *InventoryService) GetProduct(id domain.ProductID) (domain.Product, error) {
	return s.network.Catalog().Get(id)
}

func (s *InventoryService) DeleteProduct(id domain.ProductID) error {
	if err := s.network.Catalog().Delete(id); err != nil {
		return err
	}
	s.audit.Notef("product %d deleted from catalog", id)
	return nil
}

// AuditTrail renders every entry as an opaque string in insertion order.
func (s *InventoryService) AuditTrail() []string {
	entries := s.audit.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
