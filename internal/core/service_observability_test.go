package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	"parkcore/pkg/domain"
)

func TestServiceObservabilityHooks(t *testing.T) {
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	logger := &captureLogger{}
	svc, _ := newTestService(t,
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithLogger(logger),
	)
	ctx := context.Background()

	mustCreateZone(t, svc, "Paddock", true)
	mustAdmit(t, svc, "Paddock", "Blue", "Velociraptor")
	if _, _, err := svc.AdmitDinosaur(ctx, "Paddock", DinosaurSpec{Name: "Rexy", Species: "T-Rex"}); !errors.Is(err, domain.ErrCompatibilityViolation) {
		t.Fatalf("expected compatibility violation, got %v", err)
	}
	if _, err := svc.ListZones(ctx); err != nil {
		t.Fatalf("list zones: %v", err)
	}
	if _, err := svc.CanSpeciesCoexist(ctx, "T-Rex", "Triceratops"); err != nil {
		t.Fatalf("coexist: %v", err)
	}

	if !audit.has(OpCreateZone, AuditStatusSuccess, func(e AuditEntry) bool {
		return e.EntityID == "Paddock" && e.Entity == EntityZone && e.Action == ActionCreate && e.ID != ""
	}) {
		t.Fatalf("missing create_zone audit entry: %+v", audit.entries)
	}
	if !audit.has(OpAdmitDinosaur, AuditStatusError, func(e AuditEntry) bool {
		return e.EntityID == "Rexy" && strings.Contains(e.Error, "cannot coexist")
	}) {
		t.Fatalf("missing failed admit audit entry: %+v", audit.entries)
	}
	if audit.has(OpListZones, AuditStatusSuccess, nil) {
		t.Fatalf("reads must not be audited")
	}
	for _, entry := range audit.entries {
		if !entry.Timestamp.Equal(fixedNow) {
			t.Fatalf("expected audit timestamps from clock, got %v", entry.Timestamp)
		}
	}

	if !metrics.has(OpAdmitDinosaur, true) || !metrics.has(OpAdmitDinosaur, false) {
		t.Fatalf("expected both admit outcomes in metrics: %+v", metrics.calls)
	}
	if !metrics.has(OpListZones, true) || !metrics.has(OpSpeciesCoexist, true) {
		t.Fatalf("expected read metrics: %+v", metrics.calls)
	}
	if !tracer.has(OpCreateZone, true) || !tracer.has(OpAdmitDinosaur, false) {
		t.Fatalf("expected spans for mutations: %+v", tracer.ended)
	}
	if len(tracer.started) != len(tracer.ended) {
		t.Fatalf("unbalanced spans: %d started, %d ended", len(tracer.started), len(tracer.ended))
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	var rejected, failed bool
	for _, call := range logger.calls {
		switch call {
		case "i:operation rejected":
			rejected = true
		case "e:operation failed":
			failed = true
		}
	}
	if !rejected || failed {
		t.Fatalf("expected domain rejection logged at info only: %v", logger.calls)
	}
}

func TestChangeListenersFireOnlyOnCommit(t *testing.T) {
	listener := &captureListener{}
	svc, _ := newTestService(t, WithChangeListener(listener))
	ctx := context.Background()
	mustCreateZone(t, svc, "A", true)
	mustCreateZone(t, svc, "B", true)
	mustAdmit(t, svc, "A", "Blue", "Velociraptor")
	mustAdmit(t, svc, "B", "Rexy", "T-Rex")

	if _, _, err := svc.MoveDinosaur(ctx, "B", "A", "Rexy"); !errors.Is(err, domain.ErrCompatibilityViolation) {
		t.Fatalf("expected violation, got %v", err)
	}
	if _, _, err := svc.ToggleZoneStatus(ctx, "Missing"); err == nil {
		t.Fatalf("expected toggle of missing zone to fail")
	}

	var late int
	svc.AddChangeListener(ChangeListenerFunc(func(context.Context, ChangeEvent) { late++ }))
	svc.AddChangeListener(nil)
	if _, _, err := svc.RemoveDinosaur(ctx, "A", "Blue"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	ops := make([]string, 0, len(listener.events))
	for _, ev := range listener.events {
		ops = append(ops, ev.Operation)
		if ev.ID == "" || !ev.Timestamp.Equal(fixedNow) || len(ev.Changes) == 0 {
			t.Fatalf("incomplete event %+v", ev)
		}
	}
	want := []string{OpCreateZone, OpCreateZone, OpAdmitDinosaur, OpAdmitDinosaur, OpRemoveDinosaur}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Fatalf("expected events %v, got %v", want, ops)
	}
	for i := 1; i < len(listener.events); i++ {
		if listener.events[i].Sequence <= listener.events[i-1].Sequence {
			t.Fatalf("sequence not increasing: %d then %d", listener.events[i-1].Sequence, listener.events[i].Sequence)
		}
	}
	// the blocked move consumed a sequence number without publishing
	if got := listener.events[len(listener.events)-1].Sequence; got != 6 {
		t.Fatalf("expected remove to carry sequence 6, got %d", got)
	}
	last := listener.events[len(listener.events)-1].Changes[0]
	if last.Action != ActionDelete || last.Zone != "A" {
		t.Fatalf("unexpected remove change %+v", last)
	}
	if late != 1 {
		t.Fatalf("expected late listener to see one event, got %d", late)
	}
}

func TestSameZoneMovePublishesNothing(t *testing.T) {
	listener := &captureListener{}
	svc, _ := newTestService(t, WithChangeListener(listener))
	mustCreateZone(t, svc, "A", true)
	mustAdmit(t, svc, "A", "Trike", "Triceratops")
	if _, _, err := svc.MoveDinosaur(context.Background(), "A", "A", "Trike"); err != nil {
		t.Fatalf("same-zone move: %v", err)
	}
	listener.mu.Lock()
	defer listener.mu.Unlock()
	if len(listener.events) != 2 {
		t.Fatalf("expected only create and admit events, got %d", len(listener.events))
	}
}

func TestChangeSequenceFollowsCommitOrder(t *testing.T) {
	listener := &captureListener{}
	svc, _ := newTestService(t, WithChangeListener(listener))
	ctx := context.Background()
	mustCreateZone(t, svc, "Meadow", true)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Trike-%02d", i)
		g.Go(func() error {
			_, _, err := svc.AdmitDinosaur(ctx, "Meadow", DinosaurSpec{Name: name, Species: "Triceratops"})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("admit: %v", err)
	}

	listener.mu.Lock()
	events := append([]ChangeEvent(nil), listener.events...)
	listener.mu.Unlock()
	sort.Slice(events, func(i, j int) bool { return events[i].Sequence < events[j].Sequence })
	var bySequence []string
	seen := map[uint64]bool{}
	for _, ev := range events {
		if seen[ev.Sequence] {
			t.Fatalf("duplicate sequence %d", ev.Sequence)
		}
		seen[ev.Sequence] = true
		if ev.Operation == OpAdmitDinosaur {
			bySequence = append(bySequence, ev.Changes[0].After.(domain.Dinosaur).Name)
		}
	}
	dinos, err := svc.ListDinosaurs(ctx, "Meadow")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := dinosaurNames(dinos); strings.Join(got, ",") != strings.Join(bySequence, ",") {
		t.Fatalf("sequence order %v does not match commit order %v", bySequence, got)
	}
}
