package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"parkcore/internal/api"
	"parkcore/internal/core"
	"parkcore/internal/telemetry"
)

func newServeCommand(st *state) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the park HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				st.cfg.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, st)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PARK_HTTP_ADDR)")
	return cmd
}

func serve(ctx context.Context, st *state) error {
	cfg, logger := st.cfg, st.logger

	tracer, shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{Mode: cfg.Tracing, ServiceName: "parkcore"})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := openApp(cfg, logger,
		core.WithTracer(tracer),
		core.WithMetricsRecorder(core.NewPrometheusMetricsRecorder(reg)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	report, err := a.seed(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("park ready",
		"storage", cfg.Storage.Driver,
		"compat_mode", a.svc.Evaluator().Mode(),
		"zones_seeded", report.ZonesCreated,
		"dinosaurs_seeded", report.DinosaursAdmitted,
	)

	router := api.NewRouter(a.svc, api.RouterOptions{
		Logger:    logger,
		Gatherer:  reg,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	server := api.NewServer(cfg.HTTPAddr, router, cfg.ShutdownTimeout, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, nil) })
	if cfg.StatusInterval > 0 {
		g.Go(func() error { return reportStatus(gctx, st, a.svc, cfg.StatusInterval) })
	}
	return g.Wait()
}

// reportStatus logs the park summary every interval until ctx is done.
func reportStatus(ctx context.Context, st *state, svc *core.Service, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			status, err := svc.ParkStatus(ctx)
			if err != nil {
				st.logger.Warn("park status failed", "error", err)
				continue
			}
			args := []any{"zones", status.Zones, "open_zones", status.OpenZones, "dinosaurs", status.Dinosaurs, "sick", status.Sick, "hungry", status.Hungry}
			if status.Hungry > 0 || status.Sick > 0 {
				st.logger.Warn("park status", args...)
				continue
			}
			st.logger.Info("park status", args...)
		}
	}
}
