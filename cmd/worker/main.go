// Package main is the entry point for a tradeplane worker.
// A worker binds one game variant: it advertises its routing port, accepts
// forwarded trade jobs, generates the requested items and drives them
// through its automation sessions.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tradeplane/internal/config"
	"tradeplane/internal/discovery"
	"tradeplane/internal/executor"
	"tradeplane/internal/logger"
	"tradeplane/internal/notifier"
	"tradeplane/internal/observability"
	"tradeplane/internal/queue"
	"tradeplane/internal/registry"
	"tradeplane/internal/rpc"
	"tradeplane/internal/service"
	"tradeplane/internal/stream"
	"tradeplane/internal/trade"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Role != config.RoleWorker {
		log.Fatalf("ROLE must be worker for this binary, got %q", cfg.Role)
	}

	slogger := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "tradeplane-worker", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slogger.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	reg := registry.New()
	streamer := stream.New(slogger)
	notif := notifier.New(reg, streamer, slogger)

	mq := executor.NewMemoryQueue(&executor.NopDriver{Delay: cfg.TradeDelay}, cfg.QueueWorkers, cfg.QueueCapacity, slogger)
	mq.Start(ctx)

	runtimes := map[trade.GameVariant]*service.VariantRuntime{
		cfg.Variant: {
			Variant: cfg.Variant,
			Engine:  executor.DryRunEngine{},
			Queue:   queue.New(mq),
		},
	}

	client := rpc.NewClient()
	svc := service.New(service.Params{
		Role:      cfg.Role,
		Registry:  reg,
		Notifier:  notif,
		Publisher: streamer,
		Locator:   discovery.New(cfg.AdvertDir, client, slogger),
		Router:    client,
		Runtimes:  runtimes,
		Logger:    slogger,
	})

	srv := rpc.NewServer(&service.RPCHandler{Service: svc}, slogger)
	if err := srv.Listen(cfg.RPCPort); err != nil {
		log.Fatalf("Failed to listen on rpc port: %v", err)
	}
	svc.SetPort(srv.Port())

	removeAdvert, err := discovery.Advertise(cfg.AdvertDir, srv.Port())
	if err != nil {
		log.Fatalf("Failed to write port advertisement: %v", err)
	}
	defer removeAdvert()

	go func() {
		if err := srv.Serve(ctx); err != nil && err != context.Canceled {
			slogger.Error("rpc server stopped", "error", err)
		}
	}()
	slogger.Info("worker started", "variant", cfg.Variant, "rpc_port", srv.Port(), "sessions", cfg.QueueWorkers)

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics(ctx, "tradeplane-worker")
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slogger.Error("failed to shutdown metrics", "error", err)
		}
	}()

	// Dedicated metrics server; workers expose no other HTTP surface.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		addr := ":" + strconv.Itoa(cfg.HTTPPort)
		slogger.Info("worker metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slogger.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down worker")
	cancel()
	srv.Close()
	mq.Stop()
}
