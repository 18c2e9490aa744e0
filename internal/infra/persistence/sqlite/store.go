// Package sqlite persists the park state to an embedded SQLite file. The
// in-memory store stays authoritative; the file is rewritten after every
// committed transaction and read back on startup.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"parkcore/internal/infra/persistence/memory"
	"parkcore/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "parkcore.db"

const schema = `
CREATE TABLE IF NOT EXISTS zones (
	name       TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	is_open    INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS dinosaurs (
	name       TEXT PRIMARY KEY,
	zone       TEXT NOT NULL REFERENCES zones(name),
	position   INTEGER NOT NULL,
	species    TEXT NOT NULL,
	diet       TEXT NOT NULL,
	is_sick    INTEGER NOT NULL,
	last_fed   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store persists the in-memory state to SQLite tables.
type Store struct {
	*memory.Store
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path and hydrates the
// in-memory store from it.
func NewStore(path string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers and keeps the file lock simple
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine, opts...), db: db, path: path}
	if err := s.load(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, is_open, created_at, updated_at FROM zones ORDER BY position`)
	if err != nil {
		return fmt.Errorf("select zones: %w", err)
	}
	var zones []domain.Zone
	byName := map[string]int{}
	for rows.Next() {
		var (
			z                domain.Zone
			open             int
			created, updated string
		)
		if err := rows.Scan(&z.Name, &open, &created, &updated); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan zone: %w", err)
		}
		z.IsOpen = open != 0
		z.CreatedAt = parseTime(created)
		z.UpdatedAt = parseTime(updated)
		z.Dinosaurs = []domain.Dinosaur{}
		byName[z.Name] = len(zones)
		zones = append(zones, z)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate zones: %w", err)
	}
	if len(zones) == 0 {
		return nil
	}

	rows, err = s.db.QueryContext(ctx, `SELECT name, zone, species, diet, is_sick, last_fed, created_at, updated_at FROM dinosaurs ORDER BY zone, position`)
	if err != nil {
		return fmt.Errorf("select dinosaurs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			d                         domain.Dinosaur
			zone, diet                string
			sick                      int
			lastFed, created, updated string
		)
		if err := rows.Scan(&d.Name, &zone, &d.Species, &diet, &sick, &lastFed, &created, &updated); err != nil {
			return fmt.Errorf("scan dinosaur: %w", err)
		}
		idx, ok := byName[zone]
		if !ok {
			continue
		}
		d.Diet = domain.Diet(diet)
		d.IsSick = sick != 0
		d.LastFed = parseTime(lastFed)
		d.CreatedAt = parseTime(created)
		d.UpdatedAt = parseTime(updated)
		zones[idx].Dinosaurs = append(zones[idx].Dinosaurs, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate dinosaurs: %w", err)
	}
	s.ImportState(domain.Snapshot{Zones: zones})
	return nil
}

func (s *Store) persist(ctx context.Context, snapshot domain.Snapshot) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM dinosaurs`); err != nil {
		return fmt.Errorf("clear dinosaurs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM zones`); err != nil {
		return fmt.Errorf("clear zones: %w", err)
	}
	for zi, z := range snapshot.Zones {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO zones(name, position, is_open, created_at, updated_at) VALUES(?,?,?,?,?)`,
			z.Name, zi, boolInt(z.IsOpen), formatTime(z.CreatedAt), formatTime(z.UpdatedAt)); err != nil {
			return fmt.Errorf("insert zone %s: %w", z.Name, err)
		}
		for di, d := range z.Dinosaurs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO dinosaurs(name, zone, position, species, diet, is_sick, last_fed, created_at, updated_at) VALUES(?,?,?,?,?,?,?,?,?)`,
				d.Name, z.Name, di, d.Species, string(d.Diet), boolInt(d.IsSick),
				formatTime(d.LastFed), formatTime(d.CreatedAt), formatTime(d.UpdatedAt)); err != nil {
				return fmt.Errorf("insert dinosaur %s: %w", d.Name, err)
			}
		}
	}
	return tx.Commit()
}

// RunInTransaction applies the provided function within a transaction and
// writes the resulting state to SQLite before it becomes visible. A failed
// write aborts the commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	return s.Store.RunInTransactionWithCommit(ctx, fn, s.persist)
}

// Flush writes the current state to SQLite; used after ImportState.
func (s *Store) Flush(ctx context.Context) error { return s.Store.Commit(ctx, s.persist) }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
