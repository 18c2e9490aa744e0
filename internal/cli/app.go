package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"parkcore/internal/catalog"
	"parkcore/internal/config"
	"parkcore/internal/core"
)

// app is a service opened against the configured store.
type app struct {
	svc   *core.Service
	store core.PersistentStore
}

func openApp(cfg config.Config, logger *slog.Logger, opts ...core.Option) (*app, error) {
	cat := catalog.Default()
	evaluator, err := cfg.Evaluator(cat)
	if err != nil {
		return nil, err
	}
	store, err := core.OpenPersistentStore(cfg.StoreConfig(logger), core.NewDefaultRulesEngine(evaluator))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	base := []core.Option{
		core.WithCatalog(cat),
		core.WithEvaluator(evaluator),
		core.WithLogger(logger),
		core.WithAuditRecorder(core.NewSlogAuditRecorder(logger)),
	}
	svc := core.NewService(store, append(base, opts...)...)
	return &app{svc: svc, store: store}, nil
}

func (a *app) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// seed applies the configured seed file or the demo seed, if any.
func (a *app) seed(ctx context.Context, cfg config.Config) (core.SeedReport, error) {
	switch {
	case cfg.SeedFile != "":
		s, err := core.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return core.SeedReport{}, err
		}
		return a.svc.ApplySeed(ctx, s)
	case cfg.SeedDemo:
		return a.svc.ApplySeed(ctx, core.DemoSeed())
	default:
		return core.SeedReport{}, nil
	}
}
