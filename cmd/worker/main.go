package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/routeslope/internal/adapters/nats"
	"github.com/samirrijal/routeslope/internal/adapters/providers"
	"github.com/samirrijal/routeslope/internal/adapters/valkey"
	"github.com/samirrijal/routeslope/internal/core/usecases"
	"github.com/samirrijal/routeslope/internal/pkg/config"
	"github.com/samirrijal/routeslope/internal/pkg/logging"
	"github.com/samirrijal/routeslope/internal/pkg/telemetry"
	"github.com/samirrijal/routeslope/internal/workflows"
)

func main() {
	cfg, err := config.Load("routeslope-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	set, err := providers.FromConfig(cfg)
	if err != nil {
		log.Fatalf("providers: %v", err)
	}

	acts := &workflows.AnalysisActivities{Routes: set.Routes, Elevations: set.Elevations}

	if cfg.Cache.Enabled {
		cache, err := valkey.New(cfg.Cache.Addr, "routeslope:")
		if err != nil {
			slog.Warn("valkey unavailable, elevation cache disabled", "error", err)
		} else {
			defer cache.Close()
			acts.Elevations = usecases.NewCachingElevationProvider(set.Elevations, cache, cfg.Cache.TTL)
		}
	}

	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, analysis events disabled", "error", err)
		} else {
			defer pub.Close()
			acts.Publisher = pub
		}
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.SlopeAnalysisWorkflow)
	w.RegisterActivity(acts)

	slog.Info("slope analysis worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
