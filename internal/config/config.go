// Package config handles environment variable loading for process role,
// ports, the advertisement directory and queue sizing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tradeplane/internal/trade"
)

// Role is the explicit, statically configured role of a process. It is
// never inferred from incidental state.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
)

// Config holds all configuration values for the application.
type Config struct {
	// Role selects coordinator or worker behavior.
	Role Role

	// Variant is the game variant this process serves locally. Required
	// for workers; optional for a coordinator that also runs sessions.
	Variant trade.GameVariant

	// RPCPort is the routing RPC listen port. 0 picks a free port.
	RPCPort int

	// HTTPPort is the coordinator's public API port.
	HTTPPort int

	// AdvertDir is the shared directory for port advertisement files.
	AdvertDir string

	// QueueWorkers is the number of automation sessions per queue.
	QueueWorkers int

	// QueueCapacity bounds the pending entries of the local queue.
	QueueCapacity int

	// TradeDelay is the simulated hand-off duration of the dry-run driver.
	TradeDelay time.Duration

	// RateLimit is submissions per second per client on the public API.
	// 0 disables rate limiting.
	RateLimit float64
	RateBurst int

	// OTELEndpoint is the OTLP trace collector address. Empty disables
	// trace export.
	OTELEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Role:          Role(getenv("ROLE", string(RoleWorker))),
		RPCPort:       0,
		HTTPPort:      8080,
		AdvertDir:     filepath.Join(os.TempDir(), "tradeplane"),
		QueueWorkers:  1,
		QueueCapacity: 64,
		TradeDelay:    0,
		RateBurst:     10,
		OTELEndpoint:  os.Getenv("OTEL_ENDPOINT"),
	}

	if cfg.Role != RoleCoordinator && cfg.Role != RoleWorker {
		return nil, fmt.Errorf("invalid ROLE %q: must be coordinator or worker", cfg.Role)
	}

	if raw := os.Getenv("GAME_VARIANT"); raw != "" {
		v, ok := trade.NormalizeVariant(raw)
		if !ok {
			return nil, fmt.Errorf("invalid GAME_VARIANT %q", raw)
		}
		cfg.Variant = v
	}
	if cfg.Role == RoleWorker && cfg.Variant == "" {
		return nil, fmt.Errorf("GAME_VARIANT is required for workers")
	}

	if dir := os.Getenv("ADVERT_DIR"); dir != "" {
		cfg.AdvertDir = dir
	}

	var err error
	if cfg.RPCPort, err = getenvInt("RPC_PORT", cfg.RPCPort); err != nil {
		return nil, err
	}
	if cfg.HTTPPort, err = getenvInt("HTTP_PORT", cfg.HTTPPort); err != nil {
		return nil, err
	}
	if cfg.QueueWorkers, err = getenvInt("QUEUE_WORKERS", cfg.QueueWorkers); err != nil {
		return nil, err
	}
	if cfg.QueueCapacity, err = getenvInt("QUEUE_CAPACITY", cfg.QueueCapacity); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = getenvInt("RATE_BURST", cfg.RateBurst); err != nil {
		return nil, err
	}

	if raw := os.Getenv("TRADE_DELAY"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRADE_DELAY: %w", err)
		}
		cfg.TradeDelay = d
	}

	if raw := os.Getenv("RATE_LIMIT"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = f
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
