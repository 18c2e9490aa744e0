package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// exerciseStore runs the shared contract against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "snapshots/b.json", strings.NewReader(`{"zones":[]}`), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"zones": "0"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "snapshots/b.json" || info.Size != int64(len(`{"zones":[]}`)) {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, "snapshots/b.json", strings.NewReader("again"), PutOptions{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists on duplicate put, got %v", err)
	}
	if _, err := store.Put(ctx, "snapshots/a.json", strings.NewReader("{}"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	if _, err := store.Put(ctx, "other/c.json", strings.NewReader("{}"), PutOptions{}); err != nil {
		t.Fatalf("put third: %v", err)
	}

	got, rc, err := store.Get(ctx, "snapshots/b.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"zones":[]}` {
		t.Fatalf("unexpected body %q", body)
	}
	if got.ContentType != "application/json" {
		t.Fatalf("expected content type preserved, got %q", got.ContentType)
	}

	head, err := store.Head(ctx, "snapshots/b.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != info.Size {
		t.Fatalf("head size mismatch: %d vs %d", head.Size, info.Size)
	}

	list, err := store.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "snapshots/a.json" || list[1].Key != "snapshots/b.json" {
		t.Fatalf("unexpected listing: %+v", list)
	}

	if _, _, err := store.Get(ctx, "snapshots/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "snapshots/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on head, got %v", err)
	}

	deleted, err := store.Delete(ctx, "snapshots/a.json")
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
	}
	deleted, err = store.Delete(ctx, "snapshots/a.json")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report missing, got %v %v", deleted, err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	exerciseStore(t, store)
}

func TestFilesystemStoreContract(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	exerciseStore(t, store)
}

func TestFilesystemRejectsUnsafeKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("expected memory store, got %v %v", store, err)
	}
	store, err = Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil || store.Driver() != DriverFilesystem {
		t.Fatalf("expected filesystem default, got %v %v", store, err)
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
