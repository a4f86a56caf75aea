// Package main is the entry point for the tradeplane coordinator.
// The coordinator exposes the public submission API, discovers sibling
// workers through the advertisement directory and routes each trade job to
// the worker owning its game variant. It may also serve one variant itself.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tradeplane/internal/config"
	"tradeplane/internal/coordinator"
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
	if cfg.Role != config.RoleCoordinator {
		log.Fatalf("ROLE must be coordinator for this binary, got %q", cfg.Role)
	}

	slogger := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "tradeplane-coordinator", cfg.OTELEndpoint)
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

	// A coordinator may serve one variant itself; others are routed.
	runtimes := make(map[trade.GameVariant]*service.VariantRuntime)
	var mq *executor.MemoryQueue
	if cfg.Variant != "" {
		mq = executor.NewMemoryQueue(&executor.NopDriver{Delay: cfg.TradeDelay}, cfg.QueueWorkers, cfg.QueueCapacity, slogger)
		mq.Start(ctx)
		runtimes[cfg.Variant] = &service.VariantRuntime{
			Variant: cfg.Variant,
			Engine:  executor.DryRunEngine{},
			Queue:   queue.New(mq),
		}
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

	// The coordinator answers INFO and status polls on its own routing
	// port so siblings can discover the variant it serves, if any.
	rpcSrv := rpc.NewServer(&service.RPCHandler{Service: svc}, slogger)
	if err := rpcSrv.Listen(cfg.RPCPort); err != nil {
		log.Fatalf("Failed to listen on rpc port: %v", err)
	}
	svc.SetPort(rpcSrv.Port())
	go func() {
		if err := rpcSrv.Serve(ctx); err != nil && err != context.Canceled {
			slogger.Error("rpc server stopped", "error", err)
		}
	}()

	if cfg.Variant != "" {
		removeAdvert, err := discovery.Advertise(cfg.AdvertDir, rpcSrv.Port())
		if err != nil {
			log.Fatalf("Failed to write port advertisement: %v", err)
		}
		defer removeAdvert()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics(ctx, "tradeplane-coordinator")
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slogger.Error("failed to shutdown metrics", "error", err)
		}
	}()

	httpSrv := coordinator.New(coordinator.Options{
		Addr:           ":" + strconv.Itoa(cfg.HTTPPort),
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		MetricsHandler: metricsHandler,
	}, svc, streamer, slogger)

	go func() {
		slogger.Info("coordinator listening", "http_port", cfg.HTTPPort, "rpc_port", rpcSrv.Port())
		if err := httpSrv.Run(ctx); err != nil && err != context.Canceled {
			slogger.Error("http server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("shutting down coordinator")
	cancel()
	rpcSrv.Close()
	if mq != nil {
		mq.Stop()
	}
}
