package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/routeslope/internal/adapters/http"
	natsadapter "github.com/samirrijal/routeslope/internal/adapters/nats"
	"github.com/samirrijal/routeslope/internal/adapters/providers"
	"github.com/samirrijal/routeslope/internal/adapters/valkey"
	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/ports"
	"github.com/samirrijal/routeslope/internal/core/usecases"
	"github.com/samirrijal/routeslope/internal/pkg/config"
	"github.com/samirrijal/routeslope/internal/pkg/logging"
	"github.com/samirrijal/routeslope/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("routeslope-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Providers
	set, err := providers.FromConfig(cfg)
	if err != nil {
		log.Fatalf("providers: %v", err)
	}
	slog.Info("providers configured", "routing", cfg.Routing.Provider, "elevation", cfg.Elevation.Provider)

	// Elevation cache
	var cache *valkey.Cache
	elevations := set.Elevations
	if cfg.Cache.Enabled {
		cache, err = valkey.New(cfg.Cache.Addr, "routeslope:")
		if err != nil {
			slog.Warn("valkey unavailable, elevation cache disabled", "error", err)
		} else {
			defer cache.Close()
			elevations = usecases.NewCachingElevationProvider(elevations, cache, cfg.Cache.TTL)
		}
	}

	// NATS
	var publisher ports.EventPublisher
	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, analysis events disabled", "error", err)
		} else {
			defer pub.Close()
			publisher = pub

			// Separate connection for WebSocket relay subscriptions
			natsConn, err = natsadapter.RawConn(cfg.NATS.URL)
			if err != nil {
				slog.Warn("nats ws conn unavailable", "error", err)
			} else {
				defer natsConn.Close()
			}
		}
	}

	slopeSvc := usecases.NewSlopeService(set.Routes, elevations, publisher, usecases.AnalysisOptions{
		IntervalKm: cfg.Analysis.IntervalKm,
		Thresholds: domain.Thresholds{Low: cfg.Analysis.FlatMaxGainM, High: cfg.Analysis.SteepMinGainM},
	})

	deps := &http.Dependencies{
		Slope:          slopeSvc,
		NATS:           natsConn,
		Cache:          cache,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "RouteSlope API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight analyses time to finish their provider calls
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeout)*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
