// Package notifier bridges automation-executor lifecycle callbacks into
// registry state transitions and live subscriber updates.
package notifier

import (
	"fmt"
	"log/slog"

	"tradeplane/internal/executor"
	"tradeplane/internal/registry"
	"tradeplane/internal/trade"
	"tradeplane/pkg/api"
)

// Publisher republishes job updates to live subscribers. Publishing must
// never block or fail the state update; the websocket streamer satisfies
// this.
type Publisher interface {
	PublishSnapshot(jobID string, snap api.TradeSnapshot)
	PublishLine(jobID, line string)
}

// Notifier applies executor callbacks to the registry and fans the results
// out to subscribers. One Notifier serves all jobs of a process; callbacks
// serialize per job through the registry's entry locks.
type Notifier struct {
	registry  *registry.Registry
	publisher Publisher
	logger    *slog.Logger
}

// New creates a Notifier.
func New(reg *registry.Registry, pub Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{registry: reg, publisher: pub, logger: logger}
}

var _ executor.Notifier = (*Notifier)(nil)

// apply runs the mutator under the job's entry lock. When the mutator
// reports the callback took effect, the line is appended and the result
// published. Callbacks rejected by the state machine (a late executor
// report against a terminal job) change nothing and publish nothing.
// Unknown jobs are logged and dropped; a late callback for a cleaned-up
// entry is harmless.
func (n *Notifier) apply(jobID, line string, mutate func(*trade.Job) bool) {
	applied := false
	err := n.registry.Update(jobID, func(j *trade.Job) {
		if !mutate(j) {
			return
		}
		applied = true
		if line != "" {
			j.AppendMessage(line)
		}
	})
	if err != nil {
		n.logger.Warn("notification for unknown job", "job_id", jobID)
		return
	}
	if !applied {
		return
	}
	snap, err := n.registry.Snapshot(jobID)
	if err != nil {
		return
	}
	n.publisher.PublishSnapshot(jobID, snap)
	if line != "" {
		n.publisher.PublishLine(jobID, line)
	}
}

// TradeInitializing marks the job picked up by an automation session.
func (n *Notifier) TradeInitializing(e *executor.Entry) {
	n.apply(e.JobID, "Initializing trade session.", func(j *trade.Job) bool {
		return j.Transition(trade.StatusInitializing)
	})
}

// TradeSearching marks the session searching for the user in-game.
func (n *Notifier) TradeSearching(e *executor.Entry) {
	line := fmt.Sprintf("Searching for you in-game. Enter exchange code %s.", e.ExchangeCode)
	n.apply(e.JobID, line, func(j *trade.Job) bool {
		return j.Transition(trade.StatusSearching)
	})
}

// TradeProgress records one completed item of a multi-item hand-off. The
// first progress report moves the job to trading; later ones only append.
func (n *Notifier) TradeProgress(e *executor.Entry, done, total int) {
	line := fmt.Sprintf("Trade progress: %d/%d.", done, total)
	n.apply(e.JobID, line, func(j *trade.Job) bool {
		j.Transition(trade.StatusTrading)
		return j.Status == trade.StatusTrading
	})
}

// SendNotification forwards a free-form progress line.
func (n *Notifier) SendNotification(e *executor.Entry, line string) {
	n.apply(e.JobID, line, func(j *trade.Job) bool { return true })
}

// TradeCancelled records an abandoned trade.
func (n *Notifier) TradeCancelled(e *executor.Entry, reason string) {
	line := fmt.Sprintf("Trade cancelled: %s", reason)
	n.apply(e.JobID, line, func(j *trade.Job) bool {
		if j.Transition(trade.StatusCancelled) {
			tradesCancelledTotal.Inc()
			return true
		}
		return false
	})
}

// TradeFailed records a hand-off the executor could not complete.
func (n *Notifier) TradeFailed(e *executor.Entry, reason string) {
	line := fmt.Sprintf("Trade failed: %s", reason)
	n.apply(e.JobID, line, func(j *trade.Job) bool {
		if j.Transition(trade.StatusFailed) {
			j.ErrorMessage = reason
			return true
		}
		return false
	})
}

// TradeFinished records a successful hand-off.
func (n *Notifier) TradeFinished(e *executor.Entry, item *trade.GeneratedItem) {
	line := "Trade completed. Enjoy!"
	if item != nil && item.Species != "" {
		line = fmt.Sprintf("Trade completed. Enjoy your %s!", item.Species)
	}
	n.apply(e.JobID, line, func(j *trade.Job) bool {
		j.Transition(trade.StatusTrading)
		if j.Transition(trade.StatusCompleted) {
			tradesCompletedTotal.Inc()
			return true
		}
		return false
	})
}
