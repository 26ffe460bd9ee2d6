// Package catalog provides the read-only listing of valid buoy stations.
// Station identifiers are validated against it before any upstream request
// is made on their behalf.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
)

// defaultStations is a baked-in station list so the service runs with zero
// configuration. The JSON shape matches the station_list.json convention:
// {"41001": {"name": "EAST HATTERAS"}, ...}.
//
//go:embed stations.json
var defaultStations []byte

// Catalog maps station ids to stations. Built once at startup, read-only
// afterwards, safe for concurrent use.
type Catalog struct {
	byID    map[string]domain.Station
	ordered []domain.Station
}

// Load builds a Catalog from the JSON file at path, or from the embedded
// default list when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultStations
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read station file: %w", err)
		}
		data = b
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var entries map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse station list: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("station list is empty")
	}

	c := &Catalog{byID: make(map[string]domain.Station, len(entries))}
	for id, meta := range entries {
		name := meta.Name
		if name == "" {
			name = id
		}
		c.byID[id] = domain.Station{ID: id, Name: name}
	}

	c.ordered = make([]domain.Station, 0, len(c.byID))
	for _, s := range c.byID {
		c.ordered = append(c.ordered, s)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })

	return c, nil
}

// Lookup returns the station for id, reporting whether it exists.
func (c *Catalog) Lookup(id string) (domain.Station, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All returns every station sorted by id, for dropdown population.
func (c *Catalog) All() []domain.Station {
	return c.ordered
}

// Len returns the number of stations.
func (c *Catalog) Len() int {
	return len(c.byID)
}
