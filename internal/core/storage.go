package core

import (
	"fmt"
	"log/slog"

	"parkcore/internal/infra/persistence/badger"
	"parkcore/internal/infra/persistence/memory"
	"parkcore/internal/infra/persistence/postgres"
	"parkcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (default, process lifetime)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBadger   StorageDriver = "badger"   // embedded badger directory
)

// StorageConfig selects and configures a backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
	BadgerDir   string
	// Logger receives backend-internal log lines where the backend supports it.
	Logger *slog.Logger
}

// OpenPersistentStore opens the backend described by cfg. Snapshot backends
// hydrate from their last committed state. Callers should close the result
// when it implements io.Closer.
func OpenPersistentStore(cfg StorageConfig, engine *RulesEngine, opts ...memory.Option) (PersistentStore, error) {
	switch cfg.Driver {
	case StorageMemory, "":
		return memory.NewStore(engine, opts...), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath, engine, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(cfg.PostgresDSN, engine, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageBadger:
		if cfg.BadgerDir == "" {
			return nil, fmt.Errorf("badger directory required")
		}
		store, err := badger.NewStore(badger.Config{Dir: cfg.BadgerDir, SyncWrites: true, Logger: cfg.Logger}, engine, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
