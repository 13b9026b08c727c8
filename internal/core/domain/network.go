package domain

import "fmt"

// Network is the fixed set of locations plus the catalog. The location set
// is immutable after construction, so lookups need no lock.
type Network struct {
	locations []*Location
	byID      map[LocationID]*Location
	catalog   *Catalog
}

func NewNetwork(catalog *Catalog, locations ...*Location) (*Network, error) {
	if catalog == nil {
		catalog = NewCatalog()
	}
	n := &Network{
		locations: make([]*Location, 0, len(locations)),
		byID:      make(map[LocationID]*Location, len(locations)),
		catalog:   catalog,
	}
	for _, loc := range locations {
		if loc == nil {
			return nil, fmt.Errorf("%w: nil location", ErrInvalidArgument)
		}
		if _, dup := n.byID[loc.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate location id %d", ErrInvalidArgument, loc.ID())
		}
		n.byID[loc.ID()] = loc
		n.locations = append(n.locations, loc)
	}
	return n, nil
}

func (n *Network) Catalog() *Catalog {
	return n.catalog
}

// Locations returns the locations in bootstrap order.
func (n *Network) Locations() []*Location {
	out := make([]*Location, len(n.locations))
	copy(out, n.locations)
	return out
}

func (n *Network) Location(id LocationID) (*Location, error) {
	loc, ok := n.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: location %d", ErrNotFound, id)
	}
	return loc, nil
}

// OfType returns the locations currently tagged typ, in bootstrap order.
func (n *Network) OfType(typ LocationType) []*Location {
	var out []*Location
	for _, loc := range n.locations {
		if loc.Type() == typ {
			out = append(out, loc)
		}
	}
	return out
}

// Disposal returns the first Disposal location. Layouts are expected to have at most one.
func (n *Network) Disposal() (*Location, bool) {
	for _, loc := range n.locations {
		if loc.Type() == Disposal {
			return loc, true
		}
	}
	return nil, false
}
