package domain

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// VolumeTolerance absorbs float rounding when comparing summed line volumes against capacity.
const VolumeTolerance = 1e-9

type LocationType int

const (
	General LocationType = iota
	Cold
	Sorting
	Disposal
)

func (t LocationType) String() string {
	switch t {
	case General:
		return "General"
	case Cold:
		return "Cold"
	case Sorting:
		return "Sorting"
	case Disposal:
		return "Disposal"
	default:
		return "Unknown"
	}
}

func (t LocationType) Valid() bool {
	return t >= General && t <= Disposal
}

func ParseLocationType(s string) (LocationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general":
		return General, nil
	case "cold":
		return Cold, nil
	case "sorting":
		return Sorting, nil
	case "disposal":
		return Disposal, nil
	}
	return 0, fmt.Errorf("%w: unknown location type %q", ErrInvalidArgument, s)
}

type LocationID int64

// Location is a capacity-bounded inventory. All state is guarded by mu; no
// method holds mu while calling into another Location.
type Location struct {
	id LocationID

	mu       sync.Mutex
	typ      LocationType
	capacity float64
	address  string
	lines    []Line
}

// LocationSummary is a consistent point-in-time reading of a location's aggregate state.
type LocationSummary struct {
	ID           LocationID
	Type         LocationType
	Address      string
	Capacity     float64
	FreeVolume   float64
	UsedVolume   float64
	ProductKinds int
	StockValue   decimal.Decimal
}

func NewLocation(id LocationID, typ LocationType, capacity float64, address string) (*Location, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: location id must be positive, got %d", ErrInvalidArgument, id)
	}
	if err := validateDetails(typ, capacity, address); err != nil {
		return nil, err
	}
	return &Location{
		id:       id,
		typ:      typ,
		capacity: capacity,
		address:  address,
	}, nil
}

func validateDetails(typ LocationType, capacity float64, address string) error {
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown location type %d", ErrInvalidArgument, typ)
	}
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %v", ErrInvalidArgument, capacity)
	}
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("%w: address cannot be empty", ErrInvalidArgument)
	}
	return nil
}

func (l *Location) ID() LocationID {
	return l.id
}

func (l *Location) Type() LocationType {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.typ
}

func (l *Location) Address() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.address
}

func (l *Location) Capacity() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capacity
}

// Label names the location in audit entries, e.g. "#3 (Cold)".
func (l *Location) Label() string {
	return fmt.Sprintf("#%d (%s)", l.id, l.Type())
}

func (l *Location) Endpoint() Endpoint {
	return Endpoint{ID: l.id, Label: l.Label()}
}

// Add merges quantity units of product into the location. It returns false
// without mutating anything when the incoming volume does not fit.
func (l *Location) Add(product Product, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}
	if product.Deleted {
		return false, fmt.Errorf("%w: product %d is deleted", ErrInvalidArgument, product.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(product.ID)
	if l.growthLocked(i, product, quantity) > l.freeVolumeLocked()+VolumeTolerance {
		return false, nil
	}

	if i >= 0 {
		l.lines[i].Product = product
		l.lines[i].Quantity += quantity
		return true, nil
	}
	l.lines = append(l.lines, Line{Product: product, Quantity: quantity})
	return true, nil
}

// growthLocked is the change in used volume from adding quantity units of
// product to line i (or a new line when i < 0). A merge restates the units
// already held at the incoming product's unit volume.
func (l *Location) growthLocked(i int, product Product, quantity int) float64 {
	if i < 0 {
		return product.UnitVolume * float64(quantity)
	}
	held := l.lines[i]
	return product.UnitVolume*float64(held.Quantity+quantity) - held.TotalVolume()
}

// Remove takes quantity units of a product out of the location, dropping the
// line when it reaches zero. It returns false when the stock is not there.
func (l *Location) Remove(productID ProductID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(productID)
	if i < 0 || l.lines[i].Quantity < quantity {
		return false, nil
	}

	l.lines[i].Quantity -= quantity
	if l.lines[i].Quantity == 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	return true, nil
}

// Snapshot returns a copy of the lines in insertion order.
func (l *Location) Snapshot() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Line returns a copy of the line for productID, if held.
func (l *Location) Line(productID ProductID) (Line, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexLocked(productID); i >= 0 {
		return l.lines[i], true
	}
	return Line{}, false
}

func (l *Location) FreeVolume() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freeVolumeLocked()
}

func (l *Location) UsedVolume() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usedVolumeLocked()
}

func (l *Location) ProductKinds() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// CapacityFor is the largest count of units of the given volume that fits right now.
func (l *Location) CapacityFor(unitVolume float64) int {
	if unitVolume <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return capacityFor(l.freeVolumeLocked(), unitVolume)
}

// CapacityForProduct is the largest count of units of product that Add would
// accept right now, counting the restated volume of a line it merges into.
func (l *Location) CapacityForProduct(product Product) int {
	if product.UnitVolume <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	free := l.freeVolumeLocked()
	if i := l.indexLocked(product.ID); i >= 0 {
		free -= l.growthLocked(i, product, 0)
	}
	return capacityFor(free, product.UnitVolume)
}

func capacityFor(free, unitVolume float64) int {
	if free <= 0 {
		return 0
	}
	n := math.Floor((free + VolumeTolerance) / unitVolume)
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func (l *Location) Summary() LocationSummary {
	summary, _ := l.Inspect()
	return summary
}

// UpdateDetails replaces type, capacity and address. Capacity may not drop
// below the volume already in use.
func (l *Location) UpdateDetails(typ LocationType, capacity float64, address string) error {
	if err := validateDetails(typ, capacity, address); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if used := l.usedVolumeLocked(); capacity+VolumeTolerance < used {
		return fmt.Errorf("%w: capacity %v is below used volume %v of location %d",
			ErrFailedPrecondition, capacity, used, l.id)
	}
	l.typ = typ
	l.capacity = capacity
	l.address = address
	return nil
}

func (l *Location) indexLocked(productID ProductID) int {
	for i := range l.lines {
		if l.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (l *Location) usedVolumeLocked() float64 {
	var used float64
	for _, line := range l.lines {
		used += line.TotalVolume()
	}
	return used
}

func (l *Location) freeVolumeLocked() float64 {
	return l.capacity - l.usedVolumeLocked()
}

// Inspect returns the summary and the line snapshot taken under one lock acquisition.
func (l *Location) Inspect() (LocationSummary, []Line) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]Line, len(l.lines))
	copy(lines, l.lines)

	value := decimal.Zero
	for _, line := range lines {
		value = value.Add(line.TotalCost())
	}
	used := l.usedVolumeLocked()
	return LocationSummary{
		ID:           l.id,
		Type:         l.typ,
		Address:      l.address,
		Capacity:     l.capacity,
		FreeVolume:   l.capacity - used,
		UsedVolume:   used,
		ProductKinds: len(lines),
		StockValue:   value,
	}, lines
}
