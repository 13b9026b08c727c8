package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

type LocationLayout struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Capacity float64 `json:"capacity"`
	Address  string  `json:"address"`
}

// NetworkLayout is the static set of locations the process starts with.
type NetworkLayout struct {
	Locations []LocationLayout `json:"locations"`
}

func DefaultLayout() NetworkLayout {
	return NetworkLayout{Locations: []LocationLayout{
		{ID: 1, Type: "general", Capacity: 1000, Address: "Hall A"},
		{ID: 2, Type: "cold", Capacity: 500, Address: "Cold room 1"},
		{ID: 3, Type: "sorting", Capacity: 300, Address: "Dock 1"},
		{ID: 4, Type: "disposal", Capacity: 200, Address: "Yard"},
	}}
}

// LoadLayout reads the layout at path, or the default layout when path is empty.
func LoadLayout(path string) (NetworkLayout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return NetworkLayout{}, fmt.Errorf("config: open layout: %w", err)
	}
	defer f.Close()
	return DecodeLayout(f)
}

func DecodeLayout(r io.Reader) (NetworkLayout, error) {
	var layout NetworkLayout
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&layout); err != nil {
		return NetworkLayout{}, fmt.Errorf("config: decode layout: %w", err)
	}
	if len(layout.Locations) == 0 {
		return NetworkLayout{}, fmt.Errorf("config: layout has no locations")
	}
	return layout, nil
}

// BuildNetwork constructs an empty Network with a fresh Catalog from the layout.
func (l NetworkLayout) BuildNetwork() (*domain.Network, error) {
	locations := make([]*domain.Location, 0, len(l.Locations))
	for _, ll := range l.Locations {
		typ, err := domain.ParseLocationType(ll.Type)
		if err != nil {
			return nil, fmt.Errorf("config: location %d: %w", ll.ID, err)
		}
		loc, err := domain.NewLocation(domain.LocationID(ll.ID), typ, ll.Capacity, ll.Address)
		if err != nil {
			return nil, fmt.Errorf("config: location %d: %w", ll.ID, err)
		}
		locations = append(locations, loc)
	}
	return domain.NewNetwork(domain.NewCatalog(), locations...)
}
