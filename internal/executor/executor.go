// Package executor defines the contracts consumed from the external
// generation engine and console-automation executor, plus an in-memory
// queue implementation that drives trade entries through a pluggable
// console driver.
package executor

import (
	"context"

	"tradeplane/internal/trade"
)

// Engine is the external item legality/generation engine. It takes a textual
// item specification and optional trainer identity overrides and returns a
// concrete generated item or a failure reason.
type Engine interface {
	Generate(ctx context.Context, itemSpec string, identity *trade.Identity) (*trade.GeneratedItem, error)
}

// Notifier receives lifecycle callbacks from the automation executor while a
// trade entry is being carried out. Implementations must be safe for
// concurrent calls from different executor goroutines.
type Notifier interface {
	// TradeInitializing fires when the executor picks the entry up.
	TradeInitializing(e *Entry)
	// TradeSearching fires when the executor is looking for the user in-game.
	TradeSearching(e *Entry)
	// TradeProgress fires per completed item of a multi-item hand-off.
	TradeProgress(e *Entry, done, total int)
	// SendNotification delivers a free-form progress line.
	SendNotification(e *Entry, line string)
	// TradeCancelled fires when the trade was abandoned before completion.
	TradeCancelled(e *Entry, reason string)
	// TradeFailed fires when the executor could not complete the hand-off.
	TradeFailed(e *Entry, reason string)
	// TradeFinished fires on a successful hand-off.
	TradeFinished(e *Entry, item *trade.GeneratedItem)
}

// Entry is one unit of work handed to the automation executor: a generated
// item bound to the job that requested it and the notifier tracking it.
type Entry struct {
	JobID        string
	OwnerID      string
	ExchangeCode string
	Item         *trade.GeneratedItem
	Notifier     Notifier

	// ShouldRun, when set, is consulted right before the entry is picked
	// up. Returning false drops the entry without side effects; this is
	// how a queued-then-cancelled job avoids being traded.
	ShouldRun func() bool
}

// Queue is the automation executor's per-variant submission queue.
type Queue interface {
	// Enqueue adds an entry. A rejection is returned as an error whose
	// message is the rejection reason.
	Enqueue(ctx context.Context, e *Entry) error

	// Len returns the number of entries waiting or in flight.
	Len() int

	// ActiveWorkers returns the number of automation sessions serving
	// this queue.
	ActiveWorkers() int

	// Accepting reports whether the queue is taking new entries.
	Accepting() bool
}

// Driver performs the actual in-game hand-off for one entry. Real
// implementations wrap the console automation protocol; the driver is
// external to this core.
type Driver interface {
	PerformTrade(ctx context.Context, e *Entry) error
}
