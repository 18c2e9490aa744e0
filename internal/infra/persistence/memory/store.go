// Package memory provides the in-memory implementation of the park zone
// store. It is the authoritative state for every storage driver; snapshot
// drivers wrap it and persist exports after each commit.
package memory

import (
	"context"
	"sync"
	"time"

	"parkcore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Zone aliases domain.Zone for in-memory persistence operations.
	Zone = domain.Zone
	// Dinosaur aliases domain.Dinosaur.
	Dinosaur = domain.Dinosaur
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
)

type memoryState struct {
	zones map[string]Zone
	// order holds zone names in creation order for listing.
	order []string
	// index maps dinosaur name to the zone holding it.
	index map[string]string
}

func newMemoryState() memoryState {
	return memoryState{
		zones: make(map[string]Zone),
		index: make(map[string]string),
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		zones: make(map[string]Zone, len(s.zones)),
		order: append([]string(nil), s.order...),
		index: make(map[string]string, len(s.index)),
	}
	for k, v := range s.zones {
		cloned.zones[k] = v.Clone()
	}
	for k, v := range s.index {
		cloned.index[k] = v
	}
	return cloned
}

func (s *memoryState) listZones() []Zone {
	out := make([]Zone, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.zones[name].Clone())
	}
	return out
}

func (s *memoryState) findDinosaur(name string) (Dinosaur, string, bool) {
	zoneName, ok := s.index[name]
	if !ok {
		return Dinosaur{}, "", false
	}
	zone := s.zones[zoneName]
	idx := zone.IndexOf(name)
	if idx < 0 {
		return Dinosaur{}, "", false
	}
	return zone.Dinosaurs[idx], zoneName, true
}

// stateFromSnapshot rebuilds state from an export, dropping zones and
// dinosaurs that would break name uniqueness.
func stateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for _, z := range snapshot.Zones {
		if z.Name == "" {
			continue
		}
		if _, exists := state.zones[z.Name]; exists {
			continue
		}
		kept := make([]Dinosaur, 0, len(z.Dinosaurs))
		for _, d := range z.Dinosaurs {
			if d.Name == "" {
				continue
			}
			if _, dup := state.index[d.Name]; dup {
				continue
			}
			state.index[d.Name] = z.Name
			kept = append(kept, d)
		}
		z.Dinosaurs = kept
		state.zones[z.Name] = z
		state.order = append(state.order, z.Name)
	}
	return state
}

// Store provides an in-memory transactional store for the park.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNowFunc overrides the clock used to stamp records.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Zones: s.state.listZones()}
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// CommitFunc receives the state a transaction is about to publish. It runs
// with the store's write lock held; an error aborts the commit and leaves the
// live state untouched. The store must not be re-entered from a CommitFunc.
type CommitFunc func(ctx context.Context, next Snapshot) error

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy replaces the live state only when fn succeeds and no rule
// reports a blocking violation, so readers never observe partial updates.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	return s.RunInTransactionWithCommit(ctx, fn, nil)
}

// RunInTransactionWithCommit behaves like RunInTransaction and additionally
// calls commit after rule evaluation, before the new state is swapped in.
func (s *Store) RunInTransactionWithCommit(ctx context.Context, fn func(tx Transaction) error, commit CommitFunc) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if commit != nil {
		if err := commit(ctx, Snapshot{Zones: tx.state.listZones()}); err != nil {
			return result, err
		}
	}

	s.state = tx.state
	return result, nil
}

// Commit calls commit with the current state under the write lock, so it
// cannot interleave with a transaction.
func (s *Store) Commit(ctx context.Context, commit CommitFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return commit(ctx, Snapshot{Zones: s.state.listZones()})
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	return fn(newTransactionView(&snapshot))
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListZones returns all zones in creation order.
func (v transactionView) ListZones() []Zone {
	return v.state.listZones()
}

// FindZone returns a copy of the named zone.
func (v transactionView) FindZone(name string) (Zone, bool) {
	z, ok := v.state.zones[name]
	if !ok {
		return Zone{}, false
	}
	return z.Clone(), true
}

// FindDinosaur returns the named dinosaur and the zone holding it.
func (v transactionView) FindDinosaur(name string) (Dinosaur, string, bool) {
	return v.state.findDinosaur(name)
}
