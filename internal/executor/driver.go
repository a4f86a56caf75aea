package executor

import (
	"context"
	"time"
)

// NopDriver is a dry-run driver: it reports searching, waits out a fixed
// hand-off delay and succeeds. Useful for local development and load tests
// where no console is attached.
type NopDriver struct {
	// Delay simulates the in-game hand-off duration. Zero means immediate.
	Delay time.Duration
}

// PerformTrade waits out the configured delay, honouring cancellation.
func (d *NopDriver) PerformTrade(ctx context.Context, e *Entry) error {
	e.Notifier.SendNotification(e, "Dry-run session: no console attached.")
	if d.Delay > 0 {
		select {
		case <-time.After(d.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
