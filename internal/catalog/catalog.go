// Package catalog holds the fixed species table and the coexistence
// heuristics evaluated over it.
package catalog

import (
	"sort"

	"parkcore/pkg/domain"
)

// defaultSpecies is the hard-coded catalog loaded at process start.
var defaultSpecies = []domain.Species{
	{Name: "T-Rex", Diet: domain.DietCarnivore, CompatibilityWeight: -10},
	{Name: "Velociraptor", Diet: domain.DietCarnivore, CompatibilityWeight: -5},
	{Name: "Triceratops", Diet: domain.DietHerbivore, CompatibilityWeight: 5},
	{Name: "Brachiosaurus", Diet: domain.DietHerbivore, CompatibilityWeight: 2},
	{Name: "Stegosaurus", Diet: domain.DietHerbivore, CompatibilityWeight: 3},
	{Name: "Parasaurolophus", Diet: domain.DietHerbivore, CompatibilityWeight: 4},
	{Name: "Dilophosaurus", Diet: domain.DietCarnivore, CompatibilityWeight: -3},
	{Name: "Gallimimus", Diet: domain.DietHerbivore, CompatibilityWeight: 1},
	{Name: "Pteranodon", Diet: domain.DietCarnivore, CompatibilityWeight: -2},
	{Name: "Compsognathus", Diet: domain.DietCarnivore, CompatibilityWeight: -1},
	{Name: "Ankylosaurus", Diet: domain.DietHerbivore, CompatibilityWeight: 3},
	{Name: "Spinosaurus", Diet: domain.DietCarnivore, CompatibilityWeight: -7},
	{Name: "Carnotaurus", Diet: domain.DietCarnivore, CompatibilityWeight: -4},
}

// Catalog is an immutable species table keyed by exact name.
type Catalog struct {
	species map[string]domain.Species
}

// New builds a catalog from entries. Later entries with a duplicate name
// replace earlier ones.
func New(entries ...domain.Species) *Catalog {
	c := &Catalog{species: make(map[string]domain.Species, len(entries))}
	for _, s := range entries {
		c.species[s.Name] = s
	}
	return c
}

// Default returns the built-in park catalog.
func Default() *Catalog {
	return New(defaultSpecies...)
}

// Lookup resolves a species by name.
func (c *Catalog) Lookup(name string) (domain.Species, error) {
	s, ok := c.species[name]
	if !ok {
		return domain.Species{}, domain.UnknownSpecies(name)
	}
	return s, nil
}

// Weight returns the species' compatibility weight, or 0 when absent.
func (c *Catalog) Weight(name string) int {
	return c.species[name].CompatibilityWeight
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.species[name]
	return ok
}

// List returns every species sorted by name.
func (c *Catalog) List() []domain.Species {
	out := make([]domain.Species, 0, len(c.species))
	for _, s := range c.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of species.
func (c *Catalog) Len() int { return len(c.species) }
