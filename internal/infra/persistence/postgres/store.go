// Package postgres provides a Postgres-backed persistent store that mirrors
// the in-memory semantics and keeps a JSONB snapshot of the park.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"parkcore/internal/infra/persistence/memory"
	"parkcore/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	// Default DSN keeps parity with the config defaults while allowing overrides via env.
	defaultDSN = "postgres://localhost/parkcore?sslmode=disable"

	zonesBucket = "zones"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists state to Postgres while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the state table exists and hydrates the in-memory
// store from any existing snapshot.
func NewStore(dsn string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine, opts...)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

// RunInTransaction applies the provided function within a transaction and
// snapshots the result to Postgres before it becomes visible. A failed write
// aborts the commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	return s.Store.RunInTransactionWithCommit(ctx, fn, s.persist)
}

// Flush writes the current state to Postgres.
func (s *Store) Flush(ctx context.Context) error { return s.Store.Commit(ctx, s.persist) }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS park_state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (domain.Snapshot, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, `SELECT payload FROM park_state WHERE bucket = $1`, zonesBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	var snapshot domain.Snapshot
	if len(payload) == 0 {
		return snapshot, nil
	}
	if err := json.Unmarshal(payload, &snapshot.Zones); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode %s: %w", zonesBucket, err)
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot.Zones)
	if err != nil {
		return fmt.Errorf("encode %s: %w", zonesBucket, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO park_state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, zonesBucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", zonesBucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
