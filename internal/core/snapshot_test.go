package core

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"parkcore/internal/blob"
	"parkcore/pkg/domain"
)

func TestSnapshotExportImportRoundTrip(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	store := blob.NewMemory()
	mustCreateZone(t, svc, "Valley", true)
	mustAdmit(t, svc, "Valley", "Trike", "Triceratops")

	info, err := svc.ExportSnapshot(ctx, store, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != SnapshotKey(fixedNow) || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}

	clk.Advance(time.Minute)
	mustCreateZone(t, svc, "Lagoon", true)
	if _, err := svc.ExportSnapshot(ctx, store, ""); err != nil {
		t.Fatalf("second export: %v", err)
	}
	mustCreateZone(t, svc, "Scratch", true)

	restored, err := svc.ImportSnapshot(ctx, store, "")
	if err != nil {
		t.Fatalf("import latest: %v", err)
	}
	if len(restored.Zones) != 2 || restored.Zones[1].Name != "Lagoon" {
		t.Fatalf("expected latest snapshot with Valley and Lagoon, got %+v", restored.Zones)
	}
	if _, err := svc.GetZone(ctx, "Scratch"); !errors.Is(err, domain.ErrZoneNotFound) {
		t.Fatalf("expected Scratch dropped by import, got %v", err)
	}

	if _, err := svc.ImportSnapshot(ctx, store, SnapshotKey(fixedNow)); err != nil {
		t.Fatalf("import by key: %v", err)
	}
	zones, _ := svc.ListZones(ctx)
	if len(zones) != 1 || zones[0].Dinosaurs[0].Name != "Trike" {
		t.Fatalf("expected first snapshot restored, got %+v", zones)
	}
	// names stay unique after import, so the index is rebuilt
	if _, _, err := svc.AdmitDinosaur(ctx, "Valley", DinosaurSpec{Name: "Trike", Species: "Triceratops"}); !errors.Is(err, domain.ErrDuplicateDinosaur) {
		t.Fatalf("expected duplicate after import, got %v", err)
	}
}

func TestSnapshotExportRejectsExistingKey(t *testing.T) {
	svc, _ := newTestService(t)
	store := blob.NewMemory()
	if _, err := svc.ExportSnapshot(context.Background(), store, "snapshots/fixed.json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := svc.ExportSnapshot(context.Background(), store, "snapshots/fixed.json"); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestSnapshotImportFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	store := blob.NewMemory()
	if _, err := svc.ImportSnapshot(ctx, store, ""); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no snapshots, got %v", err)
	}
	if _, err := svc.ImportSnapshot(ctx, store, "snapshots/missing.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}
	payload := `{"version": 9, "zones": []}`
	if _, err := store.Put(ctx, "snapshots/future.json", strings.NewReader(payload), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := svc.ImportSnapshot(ctx, store, "snapshots/future.json"); err == nil || !strings.Contains(err.Error(), "unsupported version") {
		t.Fatalf("expected version error, got %v", err)
	}
	if _, err := store.Put(ctx, "snapshots/garbage.json", bytes.NewReader([]byte("{")), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := svc.ImportSnapshot(ctx, store, "snapshots/garbage.json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSnapshotImportDropsDuplicateNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	store := blob.NewMemory()
	payload := `{"version":1,"zones":[
		{"name":"A","is_open":true,"dinosaurs":[{"name":"Dup","species":"Triceratops","diet":"herbivore"}]},
		{"name":"A","is_open":false,"dinosaurs":[]},
		{"name":"B","is_open":true,"dinosaurs":[{"name":"Dup","species":"Stegosaurus","diet":"herbivore"}]}
	]}`
	if _, err := store.Put(ctx, "snapshots/dups.json", strings.NewReader(payload), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	snap, err := svc.ImportSnapshot(ctx, store, "snapshots/dups.json")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(snap.Zones) != 2 || !snap.Zones[0].IsOpen || len(snap.Zones[1].Dinosaurs) != 0 {
		t.Fatalf("expected first occurrences kept, got %+v", snap.Zones)
	}
}

func TestSnapshotImportFlushesPersistentStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "park.db")
	store, err := OpenPersistentStore(StorageConfig{Driver: StorageSQLite, SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	svc := NewService(store, WithClock(&stubClock{t: fixedNow}))
	ctx := context.Background()
	archive := blob.NewMemory()
	mustCreateZone(t, svc, "Valley", true)
	if _, err := svc.ExportSnapshot(ctx, archive, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	mustCreateZone(t, svc, "Scratch", true)
	if _, err := svc.ImportSnapshot(ctx, archive, ""); err != nil {
		t.Fatalf("import: %v", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	reopened, err := OpenPersistentStore(StorageConfig{Driver: StorageSQLite, SQLitePath: path}, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.(interface{ Close() error }).Close() })
	zones := reopened.ExportState().Zones
	if len(zones) != 1 || zones[0].Name != "Valley" {
		t.Fatalf("expected imported state persisted, got %+v", zones)
	}
}

func TestSnapshotKeysSortChronologically(t *testing.T) {
	a := SnapshotKey(fixedNow)
	b := SnapshotKey(fixedNow.Add(time.Nanosecond))
	c := SnapshotKey(fixedNow.Add(time.Hour))
	if !(a < b && b < c) {
		t.Fatalf("keys out of order: %s %s %s", a, b, c)
	}
	if !strings.HasPrefix(a, SnapshotPrefix) {
		t.Fatalf("expected prefix on %s", a)
	}
}
