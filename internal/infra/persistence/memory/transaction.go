package memory

import (
	"time"

	"parkcore/pkg/domain"
)

// transaction represents a mutation set applied to a private copy of the store state.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Changes returns the changes recorded so far.
func (tx *transaction) Changes() []Change {
	return append([]Change(nil), tx.changes...)
}

// FindZone exposes zone lookup within the transaction scope.
func (tx *transaction) FindZone(name string) (Zone, bool) {
	z, ok := tx.state.zones[name]
	if !ok {
		return Zone{}, false
	}
	return z.Clone(), true
}

// FindDinosaur exposes park-wide dinosaur lookup within the transaction scope.
func (tx *transaction) FindDinosaur(name string) (Dinosaur, string, bool) {
	return tx.state.findDinosaur(name)
}

// CreateZone stores a new, empty zone.
func (tx *transaction) CreateZone(z Zone) (Zone, error) {
	if z.Name == "" {
		return Zone{}, domain.InvalidArgument("zone name is required")
	}
	if _, exists := tx.state.zones[z.Name]; exists {
		return Zone{}, domain.ZoneAlreadyExists(z.Name)
	}
	z.Dinosaurs = []Dinosaur{}
	z.CreatedAt = tx.now
	z.UpdatedAt = tx.now
	tx.state.zones[z.Name] = z
	tx.state.order = append(tx.state.order, z.Name)
	tx.recordChange(Change{Entity: domain.EntityZone, Action: domain.ActionCreate, Zone: z.Name, After: z.Clone()})
	return z.Clone(), nil
}

// UpdateZone mutates zone attributes. The name and membership are restored
// after the mutator runs; membership only changes through dinosaur methods.
func (tx *transaction) UpdateZone(name string, mutator func(*Zone) error) (Zone, error) {
	current, ok := tx.state.zones[name]
	if !ok {
		return Zone{}, domain.ZoneNotFound(name)
	}
	before := current.Clone()
	working := current.Clone()
	if err := mutator(&working); err != nil {
		return Zone{}, err
	}
	working.Name = name
	working.Dinosaurs = before.Dinosaurs
	working.CreatedAt = before.CreatedAt
	working.UpdatedAt = tx.now
	tx.state.zones[name] = working
	tx.recordChange(Change{Entity: domain.EntityZone, Action: domain.ActionUpdate, Zone: name, Before: before, After: working.Clone()})
	return working.Clone(), nil
}

// AddDinosaur appends a dinosaur to a zone. Names are unique park-wide.
func (tx *transaction) AddDinosaur(zoneName string, d Dinosaur) (Dinosaur, error) {
	zone, ok := tx.state.zones[zoneName]
	if !ok {
		return Dinosaur{}, domain.ZoneNotFound(zoneName)
	}
	if d.Name == "" {
		return Dinosaur{}, domain.InvalidArgument("dinosaur name is required")
	}
	if holder, exists := tx.state.index[d.Name]; exists {
		return Dinosaur{}, domain.DuplicateDinosaur(d.Name, holder)
	}
	if d.LastFed.IsZero() {
		d.LastFed = tx.now
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	zone.Dinosaurs = append(zone.Dinosaurs, d)
	zone.UpdatedAt = tx.now
	tx.state.zones[zoneName] = zone
	tx.state.index[d.Name] = zoneName
	tx.recordChange(Change{Entity: domain.EntityDinosaur, Action: domain.ActionCreate, Zone: zoneName, After: d})
	return d, nil
}

// UpdateDinosaur mutates a dinosaur in place. Name and species are immutable.
func (tx *transaction) UpdateDinosaur(name string, mutator func(*Dinosaur) error) (Dinosaur, error) {
	current, zoneName, ok := tx.state.findDinosaur(name)
	if !ok {
		return Dinosaur{}, domain.DinosaurNotFound(name, "")
	}
	before := current
	if err := mutator(&current); err != nil {
		return Dinosaur{}, err
	}
	current.Name = before.Name
	current.Species = before.Species
	current.Diet = before.Diet
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now

	zone := tx.state.zones[zoneName]
	zone.Dinosaurs[zone.IndexOf(name)] = current
	tx.state.zones[zoneName] = zone
	tx.recordChange(Change{Entity: domain.EntityDinosaur, Action: domain.ActionUpdate, Zone: zoneName, Before: before, After: current})
	return current, nil
}

// MoveDinosaur removes the dinosaur from one zone and appends it to another.
// Both halves land in the same transactional copy.
func (tx *transaction) MoveDinosaur(name, from, to string) (Dinosaur, error) {
	src, ok := tx.state.zones[from]
	if !ok {
		return Dinosaur{}, domain.ZoneNotFound(from)
	}
	dst, ok := tx.state.zones[to]
	if !ok {
		return Dinosaur{}, domain.ZoneNotFound(to)
	}
	idx := src.IndexOf(name)
	if idx < 0 {
		return Dinosaur{}, domain.DinosaurNotFound(name, from)
	}
	d := src.Dinosaurs[idx]
	if from == to {
		return d, nil
	}
	before := d
	d.UpdatedAt = tx.now

	src.Dinosaurs = append(src.Dinosaurs[:idx:idx], src.Dinosaurs[idx+1:]...)
	src.UpdatedAt = tx.now
	dst.Dinosaurs = append(dst.Dinosaurs, d)
	dst.UpdatedAt = tx.now

	tx.state.zones[from] = src
	tx.state.zones[to] = dst
	tx.state.index[name] = to
	tx.recordChange(Change{Entity: domain.EntityDinosaur, Action: domain.ActionMove, Zone: to, FromZone: from, Before: before, After: d})
	return d, nil
}

// RemoveDinosaur deletes a dinosaur from the named zone.
func (tx *transaction) RemoveDinosaur(zoneName, name string) (Dinosaur, error) {
	zone, ok := tx.state.zones[zoneName]
	if !ok {
		return Dinosaur{}, domain.ZoneNotFound(zoneName)
	}
	idx := zone.IndexOf(name)
	if idx < 0 {
		return Dinosaur{}, domain.DinosaurNotFound(name, zoneName)
	}
	d := zone.Dinosaurs[idx]
	zone.Dinosaurs = append(zone.Dinosaurs[:idx:idx], zone.Dinosaurs[idx+1:]...)
	zone.UpdatedAt = tx.now
	tx.state.zones[zoneName] = zone
	delete(tx.state.index, name)
	tx.recordChange(Change{Entity: domain.EntityDinosaur, Action: domain.ActionDelete, Zone: zoneName, Before: d})
	return d, nil
}
