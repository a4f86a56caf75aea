// Package coordinator contains the coordinator-specific logic for the
// public HTTP API.
package coordinator

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"tradeplane/internal/coordinator/handlers"
	"tradeplane/internal/coordinator/middleware"
)

// Server is the HTTP server for the coordinator API.
type Server struct {
	httpServer *http.Server
}

// Options configures the coordinator server.
type Options struct {
	Addr           string
	RateLimit      float64
	RateBurst      int
	MetricsHandler http.Handler
}

// New creates a new coordinator server.
func New(opts Options, svc handlers.TradeService, streamer handlers.Subscriber, logger *slog.Logger) *Server {
	h := handlers.New(svc, streamer, logger)
	limit := middleware.RateLimit(opts.RateLimit, opts.RateBurst)

	mux := http.NewServeMux()

	// Submission endpoints are rate limited per client.
	mux.Handle("POST /trades", limit(http.HandlerFunc(h.SubmitTrade)))
	mux.Handle("POST /trades/batch", limit(http.HandlerFunc(h.SubmitBatch)))

	mux.HandleFunc("GET /trades/{id}", h.GetTrade)
	mux.HandleFunc("DELETE /trades/{id}", h.CancelTrade)
	mux.HandleFunc("GET /trades/{id}/stream", h.StreamTrade)
	mux.HandleFunc("GET /users/{id}/trades", h.ListUserTrades)
	mux.HandleFunc("GET /instances", h.ListInstances)
	mux.HandleFunc("GET /healthz", h.Healthz)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:        opts.Addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// No write timeout: the stream endpoint holds connections open.
			IdleTimeout: 120 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
