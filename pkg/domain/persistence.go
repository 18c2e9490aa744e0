package domain

import "context"

// Transaction exposes the park mutations a persistence implementation must
// support within an atomic scope. Implementations enforce referential
// integrity (zone existence, name uniqueness); access gating and
// compatibility are the engine's and the rules' concern.
type Transaction interface {
	Snapshot() TransactionView
	Changes() []Change
	FindZone(name string) (Zone, bool)
	FindDinosaur(name string) (Dinosaur, string, bool)
	CreateZone(Zone) (Zone, error)
	UpdateZone(name string, mutator func(*Zone) error) (Zone, error)
	AddDinosaur(zone string, d Dinosaur) (Dinosaur, error)
	UpdateDinosaur(name string, mutator func(*Dinosaur) error) (Dinosaur, error)
	MoveDinosaur(name, from, to string) (Dinosaur, error)
	RemoveDinosaur(zone, name string) (Dinosaur, error)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// Snapshot is an ordered, self-contained export of the park state.
type Snapshot struct {
	Zones []Zone `json:"zones"`
}

// PersistentStore is the storage abstraction consumed by the engine.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(Snapshot)
	RulesEngine() *RulesEngine
}
