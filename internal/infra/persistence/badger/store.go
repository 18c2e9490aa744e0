// Package badger persists the park snapshot in an embedded Badger key-value
// store. Each committed transaction overwrites a single JSON document.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"parkcore/internal/infra/persistence/memory"
	"parkcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

var snapshotKey = []byte("park/snapshot")

// Config controls where and how the database is opened.
type Config struct {
	// Dir is the database directory. Empty opens an in-memory database.
	Dir        string
	SyncWrites bool
	// Logger receives Badger's internal log lines. Nil silences them.
	Logger *slog.Logger
}

// Store persists state to Badger while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db *badger.DB
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// NewStore opens the database described by cfg and hydrates the in-memory
// store from the stored snapshot, if any.
func NewStore(cfg Config, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	var bopts badger.Options
	if cfg.Dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Dir, err)
		}
		bopts = badger.DefaultOptions(cfg.Dir)
	}
	bopts = bopts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		bopts = bopts.WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	snapshot, err := loadSnapshot(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine, opts...)
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

func loadSnapshot(db *badger.DB) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snapshot)
		})
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot, nil
}

// RunInTransaction applies the provided function within a transaction and
// writes the resulting snapshot to Badger before it becomes visible. A
// failed write aborts the commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	return s.Store.RunInTransactionWithCommit(ctx, fn, s.persist)
}

// Flush writes the current state to Badger.
func (s *Store) Flush(ctx context.Context) error { return s.Store.Commit(ctx, s.persist) }

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) persist(_ context.Context, snapshot domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	}); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
