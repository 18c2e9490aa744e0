package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"parkcore/internal/catalog"
	"parkcore/internal/infra/persistence/memory"
	"parkcore/pkg/domain"
)

// Operation names reported to loggers, metrics, traces and audit entries.
const (
	OpCreateZone        = "create_zone"
	OpToggleZone        = "toggle_zone"
	OpAdmitDinosaur     = "admit_dinosaur"
	OpMoveDinosaur      = "move_dinosaur"
	OpRemoveDinosaur    = "remove_dinosaur"
	OpFeedDinosaur      = "feed_dinosaur"
	OpSetDinosaurHealth = "set_dinosaur_health"
	OpImportSnapshot    = "import_snapshot"
	OpExportSnapshot    = "export_snapshot"
	OpListZones         = "list_zones"
	OpGetZone           = "get_zone"
	OpListDinosaurs     = "list_dinosaurs"
	OpFindDinosaur      = "find_dinosaur"
	OpParkStatus        = "park_status"
	OpSpeciesCoexist    = "species_coexist"
)

type operationMeta struct {
	entity EntityType
	action Action
}

var operationMetadata = map[string]operationMeta{
	OpCreateZone:        {entity: EntityZone, action: ActionCreate},
	OpToggleZone:        {entity: EntityZone, action: ActionUpdate},
	OpAdmitDinosaur:     {entity: EntityDinosaur, action: ActionCreate},
	OpMoveDinosaur:      {entity: EntityDinosaur, action: ActionMove},
	OpRemoveDinosaur:    {entity: EntityDinosaur, action: ActionDelete},
	OpFeedDinosaur:      {entity: EntityDinosaur, action: ActionUpdate},
	OpSetDinosaurHealth: {entity: EntityDinosaur, action: ActionUpdate},
	OpImportSnapshot:    {entity: EntityZone, action: ActionUpdate},
}

// DinosaurSpec is the caller-supplied description of a dinosaur to admit.
type DinosaurSpec struct {
	Name    string
	Species string
	IsSick  bool
	// LastFed defaults to the engine clock when zero.
	LastFed time.Time
}

// Service is the park engine: the only mutator of the zone store and the
// place where gating, species lookup and compatibility are enforced.
type Service struct {
	store     PersistentStore
	catalog   *catalog.Catalog
	evaluator catalog.Evaluator
	clock     Clock
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer

	listenersMu sync.RWMutex
	listeners   []ChangeListener
	seq         atomic.Uint64
}

func newService(opts ...Option) *Service {
	s := &Service{
		catalog: catalog.Default(),
		clock:   systemClock(),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.evaluator == nil {
		s.evaluator = catalog.HeuristicEvaluator{Catalog: s.catalog}
	}
	return s
}

// NewService constructs a service backed by the supplied store. The store
// engine's zone compatibility rule is (re)bound to the service evaluator, so
// admission, moves and CanSpeciesCoexist always agree.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := newService(opts...)
	s.store = store
	s.ensureRules()
	return s
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	s := newService(opts...)
	if engine == nil {
		engine = NewRulesEngine()
	}
	s.store = memory.NewStore(engine, memory.WithNowFunc(s.clock.Now))
	s.ensureRules()
	return s
}

func (s *Service) ensureRules() {
	if engine := s.store.RulesEngine(); engine != nil {
		engine.Replace(NewZoneCompatibilityRule(s.evaluator))
	}
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Catalog returns the species catalog used for admission.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Evaluator returns the configured compatibility evaluator.
func (s *Service) Evaluator() catalog.Evaluator { return s.evaluator }

// Clock returns the engine clock.
func (s *Service) Clock() Clock { return s.clock }

// AddChangeListener registers a listener after construction.
func (s *Service) AddChangeListener(listener ChangeListener) {
	if listener == nil {
		return
	}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, listener)
	s.listenersMu.Unlock()
}

// CreateZone inserts an empty zone.
func (s *Service) CreateZone(ctx context.Context, name string, isOpen bool) (Zone, Result, error) {
	var created Zone
	res, err := s.run(ctx, OpCreateZone, name, func(tx Transaction) error {
		var err error
		created, err = tx.CreateZone(Zone{Name: name, IsOpen: isOpen})
		return err
	})
	return created, res, err
}

// ToggleZoneStatus flips the zone between open and closed.
func (s *Service) ToggleZoneStatus(ctx context.Context, name string) (Zone, Result, error) {
	var updated Zone
	res, err := s.run(ctx, OpToggleZone, name, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateZone(name, func(z *Zone) error {
			z.IsOpen = !z.IsOpen
			return nil
		})
		return err
	})
	return updated, res, err
}

// AdmitDinosaur appends a new dinosaur to an open zone. Checks run in order:
// name present, zone available, species catalogued, name unused in the park,
// then compatibility with every occupant.
func (s *Service) AdmitDinosaur(ctx context.Context, zoneName string, spec DinosaurSpec) (Dinosaur, Result, error) {
	var created Dinosaur
	res, err := s.run(ctx, OpAdmitDinosaur, spec.Name, func(tx Transaction) error {
		if spec.Name == "" {
			return domain.InvalidArgument("dinosaur name is required")
		}
		zone, ok := tx.FindZone(zoneName)
		if !ok || !zone.IsOpen {
			return domain.ZoneUnavailable(zoneName)
		}
		species, err := s.catalog.Lookup(spec.Species)
		if err != nil {
			return err
		}
		lastFed := spec.LastFed
		if lastFed.IsZero() {
			lastFed = s.clock.Now()
		}
		created, err = tx.AddDinosaur(zoneName, Dinosaur{
			Name:    spec.Name,
			Species: species.Name,
			Diet:    species.Diet,
			IsSick:  spec.IsSick,
			LastFed: lastFed,
		})
		return err
	})
	return created, res, err
}

// MoveDinosaur transfers a dinosaur between zones in one transaction. The
// source may be closed; the destination must exist and be open. A dinosaur
// missing from the source fails with DinosaurNotFound.
func (s *Service) MoveDinosaur(ctx context.Context, fromZone, toZone, name string) (Dinosaur, Result, error) {
	var moved Dinosaur
	res, err := s.run(ctx, OpMoveDinosaur, name, func(tx Transaction) error {
		src, ok := tx.FindZone(fromZone)
		if !ok {
			return domain.ZoneUnavailable(fromZone)
		}
		dst, ok := tx.FindZone(toZone)
		if !ok || !dst.IsOpen {
			return domain.ZoneUnavailable(toZone)
		}
		if !src.Contains(name) {
			return domain.DinosaurNotFound(name, fromZone)
		}
		var err error
		moved, err = tx.MoveDinosaur(name, fromZone, toZone)
		return err
	})
	return moved, res, err
}

// RemoveDinosaur deletes a dinosaur from a zone, open or closed.
func (s *Service) RemoveDinosaur(ctx context.Context, zoneName, name string) (Dinosaur, Result, error) {
	var removed Dinosaur
	res, err := s.run(ctx, OpRemoveDinosaur, name, func(tx Transaction) error {
		var err error
		removed, err = tx.RemoveDinosaur(zoneName, name)
		return err
	})
	return removed, res, err
}

// FeedDinosaur stamps the dinosaur's last feeding with the engine clock.
func (s *Service) FeedDinosaur(ctx context.Context, name string) (Dinosaur, Result, error) {
	var fed Dinosaur
	res, err := s.run(ctx, OpFeedDinosaur, name, func(tx Transaction) error {
		var err error
		fed, err = tx.UpdateDinosaur(name, func(d *Dinosaur) error {
			d.LastFed = s.clock.Now()
			return nil
		})
		return err
	})
	return fed, res, err
}

// SetDinosaurHealth marks a dinosaur sick or healthy.
func (s *Service) SetDinosaurHealth(ctx context.Context, name string, sick bool) (Dinosaur, Result, error) {
	var updated Dinosaur
	res, err := s.run(ctx, OpSetDinosaurHealth, name, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateDinosaur(name, func(d *Dinosaur) error {
			d.IsSick = sick
			return nil
		})
		return err
	})
	return updated, res, err
}

// ListZones returns every zone, deep-copied, in creation order.
func (s *Service) ListZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	err := s.read(ctx, OpListZones, func(view TransactionView) error {
		zones = view.ListZones()
		return nil
	})
	return zones, err
}

// GetZone returns one zone.
func (s *Service) GetZone(ctx context.Context, name string) (Zone, error) {
	var zone Zone
	err := s.read(ctx, OpGetZone, func(view TransactionView) error {
		var ok bool
		zone, ok = view.FindZone(name)
		if !ok {
			return domain.ZoneNotFound(name)
		}
		return nil
	})
	return zone, err
}

// ListDinosaurs returns the zone's dinosaurs in admission order.
func (s *Service) ListDinosaurs(ctx context.Context, zoneName string) ([]Dinosaur, error) {
	var dinosaurs []Dinosaur
	err := s.read(ctx, OpListDinosaurs, func(view TransactionView) error {
		zone, ok := view.FindZone(zoneName)
		if !ok {
			return domain.ZoneNotFound(zoneName)
		}
		dinosaurs = zone.Dinosaurs
		return nil
	})
	return dinosaurs, err
}

// FindDinosaur returns the named dinosaur and the zone holding it.
func (s *Service) FindDinosaur(ctx context.Context, name string) (Dinosaur, string, error) {
	var (
		found    Dinosaur
		zoneName string
	)
	err := s.read(ctx, OpFindDinosaur, func(view TransactionView) error {
		var ok bool
		found, zoneName, ok = view.FindDinosaur(name)
		if !ok {
			return domain.DinosaurNotFound(name, "")
		}
		return nil
	})
	return found, zoneName, err
}

// ParkStatus summarizes the park for dashboards.
func (s *Service) ParkStatus(ctx context.Context) (domain.ParkStatus, error) {
	var status domain.ParkStatus
	err := s.read(ctx, OpParkStatus, func(view TransactionView) error {
		status = domain.SummarizePark(view.ListZones(), s.clock.Now())
		return nil
	})
	return status, err
}

// CanSpeciesCoexist delegates to the configured evaluator.
func (s *Service) CanSpeciesCoexist(ctx context.Context, speciesA, speciesB string) (bool, error) {
	_, span := s.tracer.Start(ctx, OpSpeciesCoexist)
	started := time.Now()
	ok, err := s.evaluator.CanCoexist(speciesA, speciesB)
	span.End(err)
	s.metrics.Observe(ctx, OpSpeciesCoexist, err == nil, time.Since(started))
	return ok, err
}

// Species lists the catalog sorted by name.
func (s *Service) Species() []Species { return s.catalog.List() }

// run executes fn in a store transaction with tracing, metrics, logging,
// audit and change publication around it.
func (s *Service) run(ctx context.Context, op, entityID string, fn func(Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	var (
		changes []Change
		seq     uint64
	)
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		if err := fn(tx); err != nil {
			return err
		}
		changes = tx.Changes()
		seq = s.seq.Add(1)
		return nil
	})
	err = translateError(err)
	elapsed := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logFailure(op, entityID, err)
		s.recordAuditFailure(ctx, op, entityID, elapsed, err)
		return res, err
	}
	s.logger.Debug("operation committed", "operation", op, "entity_id", entityID, "changes", len(changes), "duration", elapsed)
	s.recordAuditSuccess(ctx, op, entityID, elapsed)
	s.publish(ctx, op, seq, changes)
	return res, nil
}

func (s *Service) read(ctx context.Context, op string, fn func(TransactionView) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	err := s.store.View(ctx, fn)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(started))
	if err != nil && domain.KindOf(err) == "" {
		s.logger.Error("read failed", "operation", op, "error", err)
	}
	return err
}

func (s *Service) logFailure(op, entityID string, err error) {
	if kind := domain.KindOf(err); kind != "" {
		s.logger.Info("operation rejected", "operation", op, "entity_id", entityID, "kind", string(kind), "error", err)
		return
	}
	s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
}

// translateError turns a blocking zone_compatibility violation into the
// typed compatibility error callers match on.
func translateError(err error) error {
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		return err
	}
	for _, v := range rve.Result.Blocking() {
		if v.Rule == ZoneCompatibilityRuleName {
			return &domain.Error{
				Kind:    domain.KindCompatibilityViolation,
				Entity:  domain.EntityDinosaur,
				Name:    v.EntityID,
				Zone:    v.Zone,
				Message: v.Message,
			}
		}
	}
	return err
}

func (s *Service) recordAuditSuccess(ctx context.Context, op, entityID string, duration time.Duration) {
	s.recordAudit(ctx, op, entityID, AuditStatusSuccess, duration, nil)
}

func (s *Service) recordAuditFailure(ctx context.Context, op, entityID string, duration time.Duration, err error) {
	s.recordAudit(ctx, op, entityID, AuditStatusError, duration, err)
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, status AuditStatus, duration time.Duration, err error) {
	meta, ok := operationMetadata[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		ID:        uuid.NewString(),
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

func (s *Service) publish(ctx context.Context, op string, seq uint64, changes []Change) {
	if len(changes) == 0 {
		return
	}
	s.listenersMu.RLock()
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.listenersMu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	event := ChangeEvent{
		ID:        uuid.NewString(),
		Sequence:  seq,
		Operation: op,
		Changes:   changes,
		Timestamp: s.clock.Now(),
	}
	for _, l := range listeners {
		l.OnChange(ctx, event)
	}
}
