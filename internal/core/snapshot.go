package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"parkcore/internal/blob"
	"parkcore/pkg/domain"
)

// SnapshotPrefix is the key prefix snapshot archives are written under.
const SnapshotPrefix = "snapshots/"

const snapshotVersion = 1

// SnapshotArchive is the JSON document written to blob storage.
type SnapshotArchive struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Zones      []domain.Zone `json:"zones"`
}

type flusher interface {
	Flush(ctx context.Context) error
}

// SnapshotKey returns the archive key for t. Keys sort chronologically.
func SnapshotKey(t time.Time) string {
	return SnapshotPrefix + t.UTC().Format("20060102T150405.000000000Z") + ".json"
}

// ExportSnapshot writes the current park state to store. An empty key
// derives one from the engine clock.
func (s *Service) ExportSnapshot(ctx context.Context, store blob.Store, key string) (blob.Info, error) {
	var info blob.Info
	err := s.instrument(ctx, OpExportSnapshot, key, func(ctx context.Context) error {
		now := s.clock.Now()
		if key == "" {
			key = SnapshotKey(now)
		}
		snapshot := s.store.ExportState()
		payload, err := json.MarshalIndent(SnapshotArchive{Version: snapshotVersion, ExportedAt: now, Zones: snapshot.Zones}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		info, err = store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"zones": strconv.Itoa(len(snapshot.Zones))},
		})
		if err != nil {
			return fmt.Errorf("write snapshot %s: %w", key, err)
		}
		return nil
	})
	return info, err
}

// ImportSnapshot replaces the park state with the archive at key, or the
// most recent archive when key is empty. Duplicate zone and dinosaur names
// in the archive are dropped, keeping the first occurrence.
func (s *Service) ImportSnapshot(ctx context.Context, store blob.Store, key string) (Snapshot, error) {
	var snapshot Snapshot
	err := s.instrument(ctx, OpImportSnapshot, key, func(ctx context.Context) error {
		if key == "" {
			latest, err := LatestSnapshotKey(ctx, store)
			if err != nil {
				return err
			}
			key = latest
		}
		_, rc, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read snapshot %s: %w", key, err)
		}
		defer func() { _ = rc.Close() }()
		var archive SnapshotArchive
		if err := json.NewDecoder(rc).Decode(&archive); err != nil {
			return fmt.Errorf("decode snapshot %s: %w", key, err)
		}
		if archive.Version != snapshotVersion {
			return fmt.Errorf("snapshot %s: unsupported version %d", key, archive.Version)
		}
		s.store.ImportState(Snapshot{Zones: archive.Zones})
		if f, ok := s.store.(flusher); ok {
			if err := f.Flush(ctx); err != nil {
				return fmt.Errorf("flush imported snapshot: %w", err)
			}
		}
		snapshot = s.store.ExportState()
		return nil
	})
	return snapshot, err
}

// LatestSnapshotKey returns the newest archive key in store.
func LatestSnapshotKey(ctx context.Context, store blob.Store) (string, error) {
	infos, err := store.List(ctx, SnapshotPrefix)
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no snapshots under %s: %w", SnapshotPrefix, blob.ErrNotFound)
	}
	return infos[len(infos)-1].Key, nil
}

// instrument wraps a non-transactional operation with the same tracing,
// metrics, logging and audit as run.
func (s *Service) instrument(ctx context.Context, op, entityID string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logFailure(op, entityID, err)
		s.recordAuditFailure(ctx, op, entityID, elapsed, err)
		return err
	}
	s.logger.Info("operation completed", "operation", op, "entity_id", entityID, "duration", elapsed)
	s.recordAuditSuccess(ctx, op, entityID, elapsed)
	return nil
}
